// Package fswalk walks directory trees the way the indexer sees them:
// symlinks are followed, loops are cut, unreadable entries are skipped.
package fswalk

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Walk calls visit for root and every directory and regular file below
// it, in lexical order within each directory. Paths keep the names they
// were reached through, so a file under a linked directory is reported
// below the link. A directory already on the current path (a symlink
// loop) is not entered again.
func Walk(root string, visit func(path string, isDir bool)) {
	ancestors := make(map[string]struct{})

	var walk func(dir string)
	walk = func(dir string) {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			slog.Debug("cannot resolve directory", slog.String("path", dir), slog.String("error", err.Error()))
			return
		}
		if _, loop := ancestors[real]; loop {
			slog.Debug("symlink loop", slog.String("path", dir))
			return
		}
		ancestors[real] = struct{}{}
		defer delete(ancestors, real)

		visit(dir, true)

		entries, err := os.ReadDir(dir)
		if err != nil {
			slog.Debug("cannot read directory", slog.String("path", dir), slog.String("error", err.Error()))
		}
		for _, e := range entries {
			p := filepath.Join(dir, e.Name())
			mode := e.Type()
			if mode&fs.ModeSymlink != 0 {
				info, err := os.Stat(p)
				if err != nil {
					slog.Debug("dangling symlink", slog.String("path", p))
					continue
				}
				mode = info.Mode().Type()
			}
			switch {
			case mode.IsDir():
				walk(p)
			case mode.IsRegular():
				visit(p, false)
			}
		}
	}

	walk(root)
}

// Files returns the regular files below root.
func Files(root string) []string {
	var files []string
	Walk(root, func(path string, isDir bool) {
		if !isDir {
			files = append(files, path)
		}
	})
	return files
}

// Dirs returns root and every directory below it.
func Dirs(root string) []string {
	var dirs []string
	Walk(root, func(path string, isDir bool) {
		if isDir {
			dirs = append(dirs, path)
		}
	})
	return dirs
}
