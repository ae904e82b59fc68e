// Package loader locates and parses Super Productivity backup snapshots.
//
// Backups are plain JSON exports. Several directories may hold them (the app
// data dir, a synced folder, the cwd); the loader scans an ordered list of
// search locations, pools all glob matches, and picks the newest file by
// filesystem modification time. Both the flat backup layout and the wrapped
// `{"data": {...}}` layout are accepted and normalized into model.Snapshot.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spdash/pkg/debug"
	"github.com/vanderheijden86/spdash/pkg/metrics"
	"github.com/vanderheijden86/spdash/pkg/model"
)

// BackupDirEnvVar overrides the default search locations with a single
// directory when set.
const BackupDirEnvVar = "SPDASH_BACKUP_DIR"

// DefaultGlob matches backup exports within a search directory.
const DefaultGlob = "*.json"

// Common errors. Callers match these with errors.Is to distinguish the
// not-found and invalid-format conditions in the UI.
var (
	ErrNoBackupFound = errors.New("no backup file found in search locations")
	ErrInvalidFormat = errors.New("file is not a Super Productivity backup")
)

// SearchLocation is one (directory, filename glob) pair to scan for backups.
type SearchLocation struct {
	Dir  string
	Glob string
}

// DefaultSearchLocations returns the platform-specific backup directories of
// the Super Productivity desktop app plus the current directory. The
// SPDASH_BACKUP_DIR environment variable replaces the whole list.
func DefaultSearchLocations() []SearchLocation {
	if dir := os.Getenv(BackupDirEnvVar); dir != "" {
		return []SearchLocation{{Dir: dir, Glob: DefaultGlob}}
	}

	var locations []SearchLocation
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			locations = append(locations, SearchLocation{
				Dir:  filepath.Join(appData, "superProductivity", "backups"),
				Glob: DefaultGlob,
			})
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			locations = append(locations, SearchLocation{
				Dir:  filepath.Join(home, "Library", "Application Support", "superProductivity", "backups"),
				Glob: DefaultGlob,
			})
		}
	default:
		if home, err := os.UserHomeDir(); err == nil {
			locations = append(locations, SearchLocation{
				Dir:  filepath.Join(home, ".config", "superProductivity", "backups"),
				Glob: DefaultGlob,
			})
		}
	}
	locations = append(locations, SearchLocation{Dir: ".", Glob: DefaultGlob})
	return locations
}

// FileInfo describes one candidate backup file.
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Options configures candidate scanning and parsing.
type Options struct {
	// WarningHandler is called with non-fatal scan warnings (unreadable
	// candidate files). If nil, warnings go to os.Stderr.
	WarningHandler func(string)
}

func (o Options) warn(msg string) {
	if o.WarningHandler != nil {
		o.WarningHandler(msg)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}

// FindCandidates scans the search locations in order and returns every
// matching file with its modification time. Missing directories are
// skipped; unreadable files produce a warning, not an error.
func FindCandidates(locations []SearchLocation, opts Options) []FileInfo {
	var candidates []FileInfo
	for _, loc := range locations {
		if _, err := os.Stat(loc.Dir); err != nil {
			continue
		}
		glob := loc.Glob
		if glob == "" {
			glob = DefaultGlob
		}
		matches, err := filepath.Glob(filepath.Join(loc.Dir, glob))
		if err != nil {
			opts.warn(fmt.Sprintf("bad glob %q in %s: %v", glob, loc.Dir, err))
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				opts.warn(fmt.Sprintf("could not access %s: %v", path, err))
				continue
			}
			if info.IsDir() {
				continue
			}
			candidates = append(candidates, FileInfo{
				Path:    path,
				ModTime: info.ModTime(),
				Size:    info.Size(),
			})
		}
	}
	return candidates
}

// MostRecentFileInfo returns the newest candidate across all locations
// without parsing it. This is the cheap query the file-change poll uses to
// decide whether a reload is worth doing.
func MostRecentFileInfo(locations []SearchLocation, opts Options) (FileInfo, error) {
	candidates := FindCandidates(locations, opts)
	if len(candidates) == 0 {
		return FileInfo{}, fmt.Errorf("%w (searched %d locations)", ErrNoBackupFound, len(locations))
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].ModTime.Equal(candidates[j].ModTime) {
			return candidates[i].ModTime.After(candidates[j].ModTime)
		}
		// Stable winner when mtimes collide.
		return candidates[i].Path < candidates[j].Path
	})
	return candidates[0], nil
}

// Load finds the most recent backup across the search locations, parses it,
// and returns the canonical snapshot together with the file it came from.
func Load(locations []SearchLocation, opts Options) (*model.Snapshot, FileInfo, error) {
	defer metrics.Timer(metrics.SnapshotLoad)()

	info, err := MostRecentFileInfo(locations, opts)
	if err != nil {
		return nil, FileInfo{}, err
	}
	debug.Log("loading snapshot from %s (modified %s)", info.Path, info.ModTime.Format(time.RFC3339))

	snap, err := LoadFile(info.Path)
	if err != nil {
		return nil, info, err
	}
	return snap, info, nil
}

// LoadFile parses a specific backup file into the canonical snapshot form.
func LoadFile(path string) (*model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoBackupFound, path)
		}
		return nil, fmt.Errorf("open backup %s: %w", path, err)
	}
	defer f.Close()

	snap, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// rawDocument decodes both accepted layouts at once: flat collections at the
// top level, or the same collections nested under "data". Nil pointers mean
// the key was absent, which is what shape validation keys on.
type rawDocument struct {
	model.Data
	Wrapped *model.Data `json:"data"`
}

// Parse reads one JSON document and normalizes it into the canonical
// `{data: {...}}` snapshot shape. A document that parses but carries neither
// layout's task+project collections fails with ErrInvalidFormat.
func Parse(r io.Reader) (*model.Snapshot, error) {
	defer metrics.Timer(metrics.JSONParse)()

	var doc rawDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing backup JSON: %w", err)
	}

	// The wrapped form wins when both are present: it is the original app
	// export, while stray top-level keys are metadata.
	if doc.Wrapped != nil && doc.Wrapped.Task != nil && doc.Wrapped.Project != nil {
		snap := &model.Snapshot{Data: *doc.Wrapped}
		if err := snap.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return snap, nil
	}

	if doc.Data.Task != nil && doc.Data.Project != nil {
		snap := &model.Snapshot{Data: doc.Data}
		if err := snap.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		debug.Log("normalized flat backup layout")
		return snap, nil
	}

	return nil, fmt.Errorf("%w: task/project collections missing at top level and under data", ErrInvalidFormat)
}
