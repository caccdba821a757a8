package preflight

import (
	"fmt"
	"syscall"
)

// MinFileDescriptors is the lowest open-file limit the server accepts.
// The index keeps segment files open and, on kqueue platforms, every
// watched directory holds a descriptor as well.
const MinFileDescriptors = 1024

// CheckFileDescriptors reports the soft RLIMIT_NOFILE.
func (c *Checker) CheckFileDescriptors() CheckResult {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return CheckResult{
			Name:     "file_descriptors",
			Status:   StatusFail,
			Message:  fmt.Sprintf("cannot read open-file limit: %v", err),
			Required: true,
		}
	}
	return fileLimitResult(uint64(limit.Cur), uint64(limit.Max))
}

func fileLimitResult(soft, hard uint64) CheckResult {
	result := CheckResult{
		Name:     "file_descriptors",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d open files (minimum: %d)", soft, MinFileDescriptors),
		Required: true,
	}
	if soft >= MinFileDescriptors {
		return result
	}

	result.Status = StatusFail
	if hard >= MinFileDescriptors {
		result.Details = fmt.Sprintf("The hard limit is %d; run 'ulimit -n %d' before starting", hard, hard)
	} else {
		result.Details = "The hard limit is also too low; raise it in the system limits configuration"
	}
	return result
}
