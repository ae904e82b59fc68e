package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/config"
	"github.com/vanderheijden86/spdash/pkg/dashboard"
	"github.com/vanderheijden86/spdash/pkg/debug"
	"github.com/vanderheijden86/spdash/pkg/export"
	"github.com/vanderheijden86/spdash/pkg/loader"
	"github.com/vanderheijden86/spdash/pkg/metrics"
	"github.com/vanderheijden86/spdash/pkg/ui"
	"github.com/vanderheijden86/spdash/pkg/version"
	"github.com/vanderheijden86/spdash/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")
	backupDir := flag.String("backup-dir", "", "Search this directory for backups first")
	exportDir := flag.String("export", "", "Export charts and tables to this directory and exit")
	sqlitePath := flag.String("sqlite", "", "Export aggregate tables to this SQLite file and exit")
	jsonFlag := flag.Bool("json", false, "Print the machine-readable report to stdout and exit")
	noWatch := flag.Bool("no-watch", false, "Disable live reload in the TUI")
	showMetrics := flag.Bool("show-metrics", false, "Print timing metrics to stderr on exit")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: spdash [options]")
		fmt.Println("\nA terminal dashboard for Super Productivity JSON backups.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("spdash %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	locations := cfg.Locations()
	if *backupDir != "" {
		locations = append([]loader.SearchLocation{{Dir: *backupDir, Glob: loader.DefaultGlob}}, locations...)
	}

	loadOpts := loader.Options{
		WarningHandler: func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		},
	}
	opts := dashboard.Options{
		CounterIDs:   cfg.Counters,
		ExcludedTags: cfg.ExcludedTagSet(),
	}

	if *showMetrics {
		defer printMetrics()
	}

	// One-shot modes run the pipeline once and exit.
	if *exportDir != "" || *sqlitePath != "" || *jsonFlag {
		if err := runOnce(locations, loadOpts, opts, *exportDir, *sqlitePath, *jsonFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := printSummary(locations, loadOpts, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(cfg, locations, loadOpts, opts, !*noWatch); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runOnce(locations []loader.SearchLocation, loadOpts loader.Options, opts dashboard.Options, exportDir, sqlitePath string, jsonOut bool) error {
	render, err := dashboard.Run(locations, loadOpts, opts)
	if err != nil {
		return err
	}
	for _, werr := range render.WidgetErrors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", werr)
	}

	if exportDir != "" {
		formats := export.DefaultFormats()
		formats.SQLite = sqlitePath == ""
		if err := export.ExportAll(render, exportDir, formats); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d figures to %s\n", len(render.Figures), exportDir)
	}
	if sqlitePath != "" {
		if err := export.NewSQLiteExporter(render).Export(sqlitePath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported aggregate tables to %s\n", sqlitePath)
	}
	if jsonOut {
		report := export.BuildJSONReport(render)
		if err := writeJSONReport(os.Stdout, report); err != nil {
			return err
		}
	}
	return nil
}

// printSummary writes a plain-text digest for non-TTY stdout (pipes, cron).
func printSummary(locations []loader.SearchLocation, loadOpts loader.Options, opts dashboard.Options) error {
	render, err := dashboard.Run(locations, loadOpts, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Backup: %s (modified %s)\n", render.File.Path, render.File.ModTime.Format("2006-01-02 15:04:05"))

	totals := aggregate.TotalsByProject(render.Records)
	sort.Slice(totals, func(i, j int) bool { return totals[i].Minutes > totals[j].Minutes })
	var grand float64
	for _, t := range totals {
		grand += t.Minutes
	}
	fmt.Printf("Total time: %s across %d projects\n\n", chart.FormatMinutes(grand), len(totals))
	for _, t := range totals {
		fmt.Printf("  %-30s %s\n", render.Resolver.ProjectDisplayName(t.Project), chart.FormatMinutes(t.Minutes))
	}

	breakdown := aggregate.TagTime(render.Tasks, render.Snapshot)
	if len(breakdown.ByTag) > 0 {
		fmt.Println()
		for _, t := range breakdown.ByTag {
			if t.Minutes <= 0 {
				continue
			}
			fmt.Printf("  %-30s %s\n", render.Resolver.TagDisplayName(t.Tag), chart.FormatMinutes(t.Minutes))
		}
		if breakdown.Untagged > 0 {
			fmt.Printf("  %-30s %s\n", "Untagged", chart.FormatMinutes(breakdown.Untagged))
		}
	}

	for _, werr := range render.WidgetErrors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", werr)
	}
	return nil
}

func runTUI(cfg config.Config, locations []loader.SearchLocation, loadOpts loader.Options, opts dashboard.Options, watch bool) error {
	var w *watcher.Watcher
	if watch {
		// Watch the current most-recent backup; a rewrite of that file is
		// the common refresh path.
		if info, err := loader.MostRecentFileInfo(locations, loadOpts); err == nil {
			w, err = watcher.New(info.Path,
				watcher.WithPollInterval(cfg.PollInterval()),
				watcher.WithOnError(func(err error) {
					debug.Log("watcher: %v", err)
				}),
			)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
				w = nil
			} else if err := w.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
				w = nil
			}
		}
	}

	p := tea.NewProgram(
		ui.New(locations, loadOpts, opts, w),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	if w != nil {
		w.Stop()
	}
	return err
}

func printMetrics() {
	for _, stat := range metrics.AllTimingStats() {
		fmt.Fprintf(os.Stderr, "%-16s count=%d total=%.1fms avg=%.1fms max=%.1fms\n",
			stat.Name, stat.Count, stat.TotalMs, stat.AvgMs, stat.MaxMs)
	}
}

func writeJSONReport(w io.Writer, report export.JSONReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
