// Package scratch provides call-scoped scratch memory for argument
// translation.
//
// A Stack is owned by a single goroutine, typically one per command buffer.
// Memory taken from it stays valid until the matching Release, which must be
// called in reverse order of Alloc, usually through defer:
//
//	descs, mark := st.Alloc(len(in))
//	defer st.Release(mark)
//
// A Pool hands out slices to concurrent callers, such as device-level calls.
package scratch

import "sync"

// minCapacity is the initial backing size of a Stack.
const minCapacity = 16

// Mark identifies a Stack position to release back to.
type Mark int

// Stack is a LIFO arena of T values. The zero value is ready to use.
// Stack is not safe for concurrent use.
type Stack[T any] struct {
	buf []T
	top int
}

// Alloc returns a zeroed slice of n elements and the mark to release it with.
// The slice has capacity n so appends never clobber later allocations.
func (s *Stack[T]) Alloc(n int) ([]T, Mark) {
	mark := Mark(s.top)
	if n <= 0 {
		return nil, mark
	}
	if s.top+n > len(s.buf) {
		s.grow(s.top + n)
	}
	out := s.buf[s.top : s.top+n : s.top+n]
	s.top += n
	return out, mark
}

// Release frees everything allocated since mark and zeroes it so that no
// handles outlive the call.
func (s *Stack[T]) Release(mark Mark) {
	m := int(mark)
	if m < 0 || m > s.top {
		panic("scratch: release of unknown mark")
	}
	clear(s.buf[m:s.top])
	s.top = m
}

// InUse returns the number of elements currently allocated.
func (s *Stack[T]) InUse() int { return s.top }

// grow reallocates the backing array. Live slices keep pointing into the
// old array, which stays valid until they are released.
func (s *Stack[T]) grow(need int) {
	size := max(minCapacity, 2*len(s.buf))
	for size < need {
		size *= 2
	}
	next := make([]T, size)
	copy(next, s.buf[:s.top])
	s.buf = next
}

// Pool hands out reusable slices of T to concurrent callers.
type Pool[T any] struct {
	pool sync.Pool
}

// Get returns a zeroed slice of length n.
func (p *Pool[T]) Get(n int) []T {
	if v, ok := p.pool.Get().(*[]T); ok && cap(*v) >= n {
		return (*v)[:n]
	}
	return make([]T, n, max(n, minCapacity))
}

// Put zeroes s and returns it to the pool.
func (p *Pool[T]) Put(s []T) {
	if cap(s) == 0 {
		return
	}
	s = s[:cap(s)]
	clear(s)
	p.pool.Put(&s)
}
