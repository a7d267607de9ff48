// Package logtail reads the tail of shelf's JSON log file for display in the
// TUI.
//
// Read keeps a ring buffer of the last N lines, so memory stays O(N) no matter
// how large the file grows. Parse decodes one zap production JSON line into an
// Entry; anything that is not a JSON object (a panic trace, say) is kept
// verbatim in Entry.Raw. Tail combines the two.
//
//	entries, err := logtail.Tail(cfg.LogFile, 200)
//	for _, e := range entries {
//		fmt.Println(e)
//	}
package logtail
