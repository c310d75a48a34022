package rhi

import (
	"errors"
	"fmt"
	"testing"
)

func TestResultString(t *testing.T) {
	tests := []struct {
		r    Result
		want string
	}{
		{Success, "SUCCESS"},
		{Failure, "FAILURE"},
		{InvalidArgument, "INVALID_ARGUMENT"},
		{OutOfMemory, "OUT_OF_MEMORY"},
		{DeviceLost, "DEVICE_LOST"},
		{Unsupported, "UNSUPPORTED"},
		{UnsatisfiedDependency, "UNSATISFIED_DEPENDENCY"},
		{MaxNum, "UNKNOWN"},
		{Result(200), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Result(%d).String() = %q, want %q", uint8(tt.r), got, tt.want)
		}
	}
}

func TestResultError(t *testing.T) {
	var err error = DeviceLost
	if err.Error() != "rhi: DEVICE_LOST" {
		t.Errorf("DeviceLost.Error() = %q", err.Error())
	}
}

func TestResultOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Result
	}{
		{"nil", nil, Success},
		{"bare", OutOfMemory, OutOfMemory},
		{"wrapped", fmt.Errorf("create buffer: %w", InvalidArgument), InvalidArgument},
		{"double wrapped", fmt.Errorf("a: %w", fmt.Errorf("b: %w", DeviceLost)), DeviceLost},
		{"foreign", errors.New("boom"), Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultOf(tt.err); got != tt.want {
				t.Errorf("ResultOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeviceLostDistinct(t *testing.T) {
	err := fmt.Errorf("submit: %w", DeviceLost)
	if errors.Is(err, InvalidArgument) {
		t.Error("DeviceLost must not match InvalidArgument")
	}
	if !errors.Is(err, DeviceLost) {
		t.Error("errors.Is(err, DeviceLost) = false")
	}
}
