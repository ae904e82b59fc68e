package loader

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/spdash/pkg/testutil"
)

func fixture() *testutil.SnapshotBuilder {
	return testutil.NewSnapshot().
		Project("p1", "Work", "#ff0000", "").
		Task("t1", "Write report", "p1", 5_400_000,
			testutil.SpentOn("2024-03-01", 5_400_000))
}

func TestParseFlatLayout(t *testing.T) {
	doc := `{
		"task": {"ids": ["t1"], "entities": {"t1": {"id": "t1", "title": "A", "timeSpent": 60000, "projectId": "p1"}}},
		"project": {"ids": ["p1"], "entities": {"p1": {"id": "p1", "title": "Work"}}}
	}`
	snap, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse flat: %v", err)
	}
	if len(snap.Tasks()) != 1 || len(snap.Projects()) != 1 {
		t.Fatalf("unexpected entity counts: %d tasks, %d projects", len(snap.Tasks()), len(snap.Projects()))
	}
	if snap.Tasks()["t1"].TimeSpent != 60000 {
		t.Errorf("timeSpent = %d, want 60000", snap.Tasks()["t1"].TimeSpent)
	}
}

func TestParseWrappedLayout(t *testing.T) {
	doc := `{"data": {
		"task": {"entities": {"t1": {"id": "t1", "title": "A", "timeSpent": 0, "projectId": "p1"}}},
		"project": {"entities": {"p1": {"id": "p1", "title": "Work"}}},
		"tag": {"entities": {"g1": {"id": "g1", "title": "Urgent"}}}
	}}`
	snap, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse wrapped: %v", err)
	}
	if len(snap.Tags()) != 1 {
		t.Errorf("expected tag collection to survive, got %d tags", len(snap.Tags()))
	}
}

func TestParseWrappedWinsOverStrayTopLevel(t *testing.T) {
	// Top-level keys next to "data" are metadata, not a second snapshot.
	doc := `{
		"task": {"entities": {"stray": {"id": "stray", "title": "X", "projectId": "p"}}},
		"project": {"entities": {}},
		"data": {
			"task": {"entities": {"t1": {"id": "t1", "title": "A", "projectId": "p1"}}},
			"project": {"entities": {"p1": {"id": "p1", "title": "Work"}}}
		}
	}`
	snap, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := snap.Tasks()["t1"]; !ok {
		t.Error("wrapped layout should win when both are present")
	}
	if _, ok := snap.Tasks()["stray"]; ok {
		t.Error("top-level entities should be ignored when data is present")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty object", `{}`},
		{"task only", `{"task": {"entities": {}}}`},
		{"unrelated json", `{"hello": "world"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"task": `))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrInvalidFormat) {
		t.Fatal("malformed JSON is a parse error, not an invalid-format error")
	}
}

func TestMostRecentFileInfo(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	fixture().WriteBackupAt(t, dir, "old.json", false, base)
	newest := fixture().WriteBackupAt(t, dir, "new.json", false, base.Add(30*time.Minute))
	fixture().WriteBackupAt(t, dir, "middle.json", false, base.Add(10*time.Minute))

	info, err := MostRecentFileInfo([]SearchLocation{{Dir: dir, Glob: DefaultGlob}}, Options{})
	if err != nil {
		t.Fatalf("MostRecentFileInfo: %v", err)
	}
	if info.Path != newest {
		t.Errorf("picked %s, want %s", info.Path, newest)
	}
}

func TestMostRecentFileInfoTiebreak(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Now().Truncate(time.Second)
	a := fixture().WriteBackupAt(t, dir, "a.json", false, mtime)
	fixture().WriteBackupAt(t, dir, "b.json", false, mtime)

	info, err := MostRecentFileInfo([]SearchLocation{{Dir: dir}}, Options{})
	if err != nil {
		t.Fatalf("MostRecentFileInfo: %v", err)
	}
	if info.Path != a {
		t.Errorf("equal mtimes should pick lexicographically first path, got %s", info.Path)
	}
}

func TestMostRecentAcrossLocations(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	fixture().WriteBackupAt(t, dirA, "a.json", false, base)
	winner := fixture().WriteBackupAt(t, dirB, "b.json", true, base.Add(time.Minute))

	locations := []SearchLocation{{Dir: dirA}, {Dir: dirB}}
	info, err := MostRecentFileInfo(locations, Options{})
	if err != nil {
		t.Fatalf("MostRecentFileInfo: %v", err)
	}
	if info.Path != winner {
		t.Errorf("newest file across locations should win, got %s", info.Path)
	}
}

func TestLoadNoBackup(t *testing.T) {
	_, _, err := Load([]SearchLocation{{Dir: t.TempDir()}}, Options{})
	if !errors.Is(err, ErrNoBackupFound) {
		t.Fatalf("expected ErrNoBackupFound, got %v", err)
	}
}

func TestLoadMissingDirectorySkipped(t *testing.T) {
	dir := t.TempDir()
	fixture().WriteBackup(t, dir, "backup.json", true)

	locations := []SearchLocation{
		{Dir: dir + "/does-not-exist"},
		{Dir: dir},
	}
	snap, info, err := Load(locations, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks()) != 1 {
		t.Errorf("expected 1 task, got %d", len(snap.Tasks()))
	}
	if info.Path == "" || info.ModTime.IsZero() {
		t.Error("file provenance not populated")
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	for _, wrapped := range []bool{false, true} {
		name := "flat"
		if wrapped {
			name = "wrapped"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := fixture().WriteBackup(t, dir, "backup.json", wrapped)
			snap, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			task, ok := snap.Tasks()["t1"]
			if !ok {
				t.Fatal("task t1 missing after round trip")
			}
			if task.TimeSpentOnDay["2024-03-01"] != 5_400_000 {
				t.Errorf("timeSpentOnDay lost: %v", task.TimeSpentOnDay)
			}
		})
	}
}

func TestDefaultSearchLocationsEnvOverride(t *testing.T) {
	t.Setenv(BackupDirEnvVar, "/tmp/spdash-backups")
	locations := DefaultSearchLocations()
	if len(locations) != 1 {
		t.Fatalf("env override should yield exactly one location, got %d", len(locations))
	}
	if locations[0].Dir != "/tmp/spdash-backups" {
		t.Errorf("dir = %s", locations[0].Dir)
	}
}
