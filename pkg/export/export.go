package export

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/spdash/pkg/dashboard"
	"github.com/vanderheijden86/spdash/pkg/debug"
)

// Formats selects which artifacts ExportAll writes.
type Formats struct {
	SVG    bool
	PNG    bool
	SQLite bool
	JSON   bool
}

// DefaultFormats writes everything.
func DefaultFormats() Formats {
	return Formats{SVG: true, PNG: true, SQLite: true, JSON: true}
}

// maxConcurrentRenders bounds the figure fan-out; PNG rasterization is the
// expensive step and each context holds its own pixel buffer.
const maxConcurrentRenders = 4

// ExportAll writes one file per figure per image format into dir, plus the
// SQLite database and JSON report when selected. Figure files are named by
// figure key. The first failure cancels nothing already written but aborts
// the remaining work.
func ExportAll(render *dashboard.Render, dir string, formats Formats) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentRenders)

	for _, fig := range render.Figures {
		fig := fig
		if formats.SVG {
			g.Go(func() error {
				path := filepath.Join(dir, fig.Key+".svg")
				if err := SaveSVG(fig, path); err != nil {
					return fmt.Errorf("svg %s: %w", fig.Key, err)
				}
				debug.Log("exported %s", path)
				return nil
			})
		}
		if formats.PNG {
			g.Go(func() error {
				path := filepath.Join(dir, fig.Key+".png")
				if err := SavePNG(fig, path); err != nil {
					return fmt.Errorf("png %s: %w", fig.Key, err)
				}
				debug.Log("exported %s", path)
				return nil
			})
		}
	}

	if formats.SQLite {
		g.Go(func() error {
			path := filepath.Join(dir, "dashboard.sqlite3")
			if err := NewSQLiteExporter(render).Export(path); err != nil {
				return fmt.Errorf("sqlite: %w", err)
			}
			debug.Log("exported %s", path)
			return nil
		})
	}
	if formats.JSON {
		g.Go(func() error {
			path := filepath.Join(dir, "dashboard.json")
			if err := SaveJSON(render, path); err != nil {
				return fmt.Errorf("json: %w", err)
			}
			debug.Log("exported %s", path)
			return nil
		})
	}

	return g.Wait()
}
