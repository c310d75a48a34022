// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import "errors"

// Result is the status code of an rhi call.
//
// Result implements error, so backends and the validation layer can return a
// bare Result or wrap it. A nil error corresponds to Success.
type Result uint8

// Result codes.
const (
	Success Result = iota
	Failure
	InvalidArgument
	OutOfMemory
	DeviceLost
	Unsupported
	UnsatisfiedDependency

	MaxNum
)

var resultNames = [MaxNum]string{
	Success:               "SUCCESS",
	Failure:               "FAILURE",
	InvalidArgument:       "INVALID_ARGUMENT",
	OutOfMemory:           "OUT_OF_MEMORY",
	DeviceLost:            "DEVICE_LOST",
	Unsupported:           "UNSUPPORTED",
	UnsatisfiedDependency: "UNSATISFIED_DEPENDENCY",
}

// String returns the canonical upper-case name of the result.
func (r Result) String() string {
	if r < MaxNum {
		return resultNames[r]
	}
	return "UNKNOWN"
}

// Error implements the error interface.
func (r Result) Error() string {
	return "rhi: " + r.String()
}

// ResultOf extracts the Result carried by err.
//
// A nil error yields Success. An error chain that contains no Result yields
// Failure.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	var r Result
	if errors.As(err, &r) {
		return r
	}
	return Failure
}
