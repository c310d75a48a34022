package scratch

import (
	"sync"
	"testing"
)

func TestStackAllocRelease(t *testing.T) {
	var st Stack[int]

	a, ma := st.Alloc(4)
	if len(a) != 4 || cap(a) != 4 {
		t.Fatalf("Alloc(4) len=%d cap=%d, want 4/4", len(a), cap(a))
	}
	for i := range a {
		a[i] = i + 1
	}

	b, mb := st.Alloc(3)
	for i := range b {
		if b[i] != 0 {
			t.Fatalf("b[%d] = %d, want zeroed", i, b[i])
		}
		b[i] = 100
	}
	if got := st.InUse(); got != 7 {
		t.Errorf("InUse() = %d, want 7", got)
	}

	st.Release(mb)
	if got := st.InUse(); got != 4 {
		t.Errorf("InUse() after release = %d, want 4", got)
	}
	for i := range a {
		if a[i] != i+1 {
			t.Errorf("a[%d] = %d, outer allocation was clobbered", i, a[i])
		}
	}

	c, mc := st.Alloc(3)
	for i := range c {
		if c[i] != 0 {
			t.Errorf("reused c[%d] = %d, want zeroed", i, c[i])
		}
	}
	st.Release(mc)
	st.Release(ma)
	if st.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0", st.InUse())
	}
}

func TestStackGrowKeepsLiveSlices(t *testing.T) {
	var st Stack[string]
	a, ma := st.Alloc(minCapacity)
	a[0] = "live"
	b, mb := st.Alloc(5 * minCapacity)
	if len(b) != 5*minCapacity {
		t.Fatalf("len(b) = %d", len(b))
	}
	if a[0] != "live" {
		t.Errorf("a[0] = %q after grow, want %q", a[0], "live")
	}
	st.Release(mb)
	st.Release(ma)
}

func TestStackZeroAlloc(t *testing.T) {
	var st Stack[byte]
	s, m := st.Alloc(0)
	if s != nil {
		t.Errorf("Alloc(0) = %v, want nil", s)
	}
	st.Release(m)
}

func TestStackReleaseUnknownMarkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Release of a mark above top did not panic")
		}
	}()
	var st Stack[int]
	st.Release(Mark(3))
}

func TestPoolConcurrent(t *testing.T) {
	var p Pool[uint64]
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := p.Get(n + 1)
			for j := range s {
				if s[j] != 0 {
					t.Errorf("Get() returned non-zero element")
					return
				}
				s[j] = uint64(n)
			}
			p.Put(s)
		}(i)
	}
	wg.Wait()
}
