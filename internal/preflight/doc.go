// Package preflight checks that the host can run the server before it
// starts: the index directory is writable, the volume has room, the process
// may open enough files, and the kernel allows enough watches for the
// configured paths.
//
//	checker := preflight.New(preflight.WithOutput(os.Stdout))
//	results := checker.RunAll(ctx, cfg.Index.Path, cfg.Index.Paths)
//	checker.PrintResults(results)
//	if checker.HasCriticalFailures(results) {
//	    // refuse to start
//	}
package preflight
