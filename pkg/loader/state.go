package loader

// FileState is the previously observed (path, mtime) pair used by the
// change poll. It is passed in and returned explicitly instead of living in
// ambient globals, so callers own their rerun state.
type FileState struct {
	Path    string
	ModTime int64 // unix nanoseconds; zero means nothing observed yet
}

// StateOf captures the poll state for a candidate file.
func StateOf(info FileInfo) FileState {
	return FileState{Path: info.Path, ModTime: info.ModTime.UnixNano()}
}

// Changed reports whether the candidate differs from the recorded state,
// either because the newest file is a different path or because it was
// rewritten in place.
func (s FileState) Changed(info FileInfo) bool {
	return s.Path != info.Path || s.ModTime != info.ModTime.UnixNano()
}

// Poll checks the search locations once and reports whether the newest
// backup differs from the recorded state, returning the refreshed state.
// A scan that finds no candidates reports no change and keeps the old state.
func (s FileState) Poll(locations []SearchLocation, opts Options) (FileState, bool) {
	info, err := MostRecentFileInfo(locations, opts)
	if err != nil {
		return s, false
	}
	if !s.Changed(info) {
		return s, false
	}
	return StateOf(info), true
}
