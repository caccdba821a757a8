// Package watcher turns filesystem notifications into index updates.
//
// FSWatcher registers paths recursively with fsnotify and emits one
// FileEvent per file change. Ingestor consumes those events, waits until
// the stream has been quiet for a short window, and hands the whole
// batch to an Applier, which applies it under exclusive index access and
// commits once.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if err := w.Watch("/path/to/docs"); err != nil {
//	    return err
//	}
//
//	ing := watcher.NewIngestor(w.Events(), coordinator, watcher.DefaultIngestorOptions())
//	go ing.Run(ctx)
//
//	// Closing the watcher closes Events; the ingestor applies what it
//	// holds and returns.
//	_ = w.Close()
package watcher
