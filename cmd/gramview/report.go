package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/AyGoub/gramview/internal/analytics"
	"github.com/AyGoub/gramview/internal/archive"
	"github.com/AyGoub/gramview/internal/config"
	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/export"
)

// runReport performs a one-shot analysis and prints the summary,
// optionally writing the session table to CSV/XLSX files.
func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	config.RegisterFlags(fs)
	from := fs.String("from", "", "start date filter (YYYY-MM-DD)")
	to := fs.String("to", "", "end date filter (YYYY-MM-DD)")
	csvPath := fs.String("csv", "", "write session table to CSV file")
	xlsxPath := fs.String("xlsx", "", "write session table to XLSX file")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.ArchivePath == "" {
		log.Fatal("report requires -archive (or GRAMVIEW_ARCHIVE)")
	}

	result, err := archive.Analyze(
		cfg.ArchivePath, cfg.SessionOptions(), cfg.Tagger(),
	)
	if errors.Is(err, event.ErrInsufficientData) {
		fmt.Printf("Not enough data to analyze: %v\n", err)
		fmt.Println("Export a larger archive and try again.")
		return
	}
	if err != nil {
		log.Fatalf("analyzing archive: %v", err)
	}

	for _, src := range result.Sources {
		if src.Err != "" {
			fmt.Fprintf(os.Stderr,
				"warning: source %s: %s\n", src.Name, src.Err)
		}
	}

	f := analytics.Filter{From: *from, To: *to}
	sessions := analytics.Sessions(result.Sessions, f)
	events := analytics.Events(result.Stream, f)
	summary := analytics.Summarize(sessions)

	first, last := result.Stream.Span()
	fmt.Printf("Events:        %d (%s to %s)\n",
		len(result.Stream),
		first.UTC().Format("2006-01-02"),
		last.UTC().Format("2006-01-02"))
	fmt.Printf("Sessions:      %d\n", summary.Sessions)
	fmt.Printf("Mean duration: %.1f min\n",
		summary.MeanDurationSeconds/60)
	fmt.Printf("Total time:    %.1f h\n", summary.TotalSeconds/3600)
	fmt.Printf("Daily average: %.1f min\n",
		summary.MeanDailySeconds/60)

	hours := analytics.HourOfDay(events)
	if hours.QuietestHour >= 0 {
		fmt.Printf("Quietest active hour: %02d:00 (%d events)\n",
			hours.QuietestHour, hours.QuietestCount)
	}

	if len(result.Themes) > 0 {
		fmt.Printf("Topics:        %d\n", len(result.Themes))
	}

	rows := analytics.SessionRows(sessions)
	if *csvPath != "" {
		writeTable(*csvPath, rows, export.WriteCSV)
	}
	if *xlsxPath != "" {
		writeTable(*xlsxPath, rows, export.WriteXLSX)
	}
}

func writeTable(
	path string,
	rows []analytics.SessionRow,
	write func(w io.Writer, rows []analytics.SessionRow) error,
) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	if err := write(f, rows); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}
	fmt.Printf("Wrote %d sessions to %s\n", len(rows), path)
}
