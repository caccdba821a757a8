package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Aman-CERP/localfiles/internal/fswalk"
)

// DefaultWatchLimitPath is where Linux exposes the per-user inotify watch
// limit.
const DefaultWatchLimitPath = "/proc/sys/fs/inotify/max_user_watches"

// CheckIndexDirectory checks that the index directory, or the closest
// existing parent it would be created under, is writable.
func (c *Checker) CheckIndexDirectory(path string) CheckResult {
	result := CheckResult{
		Name:     "index_directory",
		Required: true,
	}

	target := existingAncestor(path)
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not a directory", target)
		return result
	}
	f, err := os.CreateTemp(target, ".preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot write to %s: %v", target, err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = StatusPass
	result.Message = path
	return result
}

// CheckPaths warns about configured paths that do not exist. The server
// still starts; those paths are reported by index_paths.
func (c *Checker) CheckPaths(paths []string) CheckResult {
	result := CheckResult{Name: "paths"}

	if len(paths) == 0 {
		result.Status = StatusWarn
		result.Message = "no paths configured"
		result.Details = "Add index.paths to .localfiles.yaml or call index_paths from the client"
		return result
	}

	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%d of %d path(s) missing", len(missing), len(paths))
		result.Details = strings.Join(missing, ", ")
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d path(s) found", len(paths))
	return result
}

// CheckWatchCapacity compares the number of directories that would be
// watched against the kernel's per-user limit. Platforms without such a
// limit pass.
func (c *Checker) CheckWatchCapacity(ctx context.Context, paths []string) CheckResult {
	result := CheckResult{Name: "watch_capacity"}

	limit, err := readWatchLimit(c.watchLimitPath)
	if err != nil {
		result.Status = StatusPass
		result.Message = "no per-user watch limit on this platform"
		return result
	}

	dirs := 0
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(p)
			dirs += len(fswalk.Dirs(abs))
		}
	}

	result.Message = fmt.Sprintf("%d directories (limit: %d)", dirs, limit)
	if dirs > limit {
		result.Status = StatusWarn
		result.Details = fmt.Sprintf("Raise %s; changes under unwatched directories are missed", c.watchLimitPath)
		return result
	}
	result.Status = StatusPass
	return result
}

func readWatchLimit(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
