package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
	_ "time/tzdata"

	"github.com/AyGoub/gramview/internal/archive"
	"github.com/AyGoub/gramview/internal/config"
	"github.com/AyGoub/gramview/internal/server"
	"github.com/AyGoub/gramview/internal/store"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

const (
	watcherDebounce     = 500 * time.Millisecond
	browserPollInterval = 100 * time.Millisecond
	browserPollAttempts = 60
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "report":
			runReport(os.Args[2:])
			return
		case "update":
			runUpdate(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("gramview %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runServe(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`gramview %s - local analytics for your activity export

Loads an exported activity archive (zip or extracted directory),
infers usage sessions from event timing, and serves descriptive
analytics over a local web API.

Usage:
  gramview [flags]           Start the server (default command)
  gramview serve [flags]     Start the server (explicit)
  gramview report [flags]    One-shot analysis report on stdout
  gramview update [flags]    Check for and install updates
  gramview version           Show version information
  gramview help              Show this help

Server flags:
  -host string         Host to bind to (default "127.0.0.1")
  -port int            Port to listen on (default 8080)
  -archive string      Archive zip or directory to analyze
  -watch               Re-analyze when the archive directory changes
  -no-browser          Don't open browser on startup

Analysis flags (serve and report):
  -gap-seconds int       Inactivity gap starting a new session (1800)
  -trailing-seconds int  Trailing allowance per session (300)
  -min-events int        Minimum total events for analysis (10)
  -theme-strategy str    Theme tagging: modulo or random
  -theme-seed int        Seed for the random strategy

Report flags:
  -from / -to string   Inclusive date filter (YYYY-MM-DD)
  -csv string          Write the session table to this CSV file
  -xlsx string         Write the session table to this XLSX file

Update flags:
  -check               Check for updates without installing
  -yes                 Install without confirmation prompt

Environment variables:
  GRAMVIEW_ARCHIVE          Archive path
  GRAMVIEW_HOST / _PORT     Bind address
  GRAMVIEW_GAP_SECONDS      Session gap threshold
  GRAMVIEW_TRAILING_SECONDS Trailing allowance
  GRAMVIEW_MIN_EVENTS       Minimum sample size
  GRAMVIEW_THEME_STRATEGY   Theme tagging strategy

A .env file in the working directory is read before the
environment. Nothing is persisted between runs.
`, version)
}

func runServe(args []string) {
	cfg := mustLoadConfig(args)

	st, err := store.Open()
	if err != nil {
		log.Fatalf("opening event store: %v", err)
	}
	defer st.Close()

	port := server.FindAvailablePort(cfg.Host, cfg.Port)
	if port != cfg.Port {
		fmt.Printf("Port %d in use, using %d\n", cfg.Port, port)
	}
	cfg.Port = port

	srv := server.New(cfg, st,
		server.WithVersion(server.VersionInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		}),
	)

	if cfg.ArchivePath != "" {
		runInitialLoad(srv, cfg.ArchivePath)
	} else {
		fmt.Println("No archive configured; upload one via the API.")
	}

	stopWatcher := startArchiveWatcher(cfg, srv)
	defer stopWatcher()

	url := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	fmt.Printf("gramview %s listening at %s\n", version, url)

	if !cfg.NoBrowser {
		go openBrowser(url)
	}

	if err := srv.ListenAndServe(); err != nil &&
		err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func mustLoadConfig(args []string) config.Config {
	fs := flag.NewFlagSet("gramview", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: gramview [serve] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

func runInitialLoad(srv *server.Server, path string) {
	fmt.Printf("Analyzing %s...\n", path)
	if err := srv.LoadArchive(context.Background(), path); err != nil {
		log.Printf("warning: %v", err)
		return
	}
	fmt.Println("Analysis ready.")
}

// startArchiveWatcher re-runs the analysis when a directory
// archive changes. Zip archives are static, so watching only
// applies to directories.
func startArchiveWatcher(
	cfg config.Config, srv *server.Server,
) func() {
	if !cfg.Watch || cfg.ArchivePath == "" {
		return func() {}
	}
	info, err := os.Stat(cfg.ArchivePath)
	if err != nil || !info.IsDir() {
		log.Printf("warning: -watch needs a directory archive")
		return func() {}
	}

	onChange := func() {
		if err := srv.LoadArchive(
			context.Background(), cfg.ArchivePath,
		); err != nil {
			log.Printf("re-analysis failed: %v", err)
		}
	}
	watcher, err := archive.NewWatcher(watcherDebounce, onChange)
	if err != nil {
		log.Printf("warning: file watcher unavailable: %v", err)
		return func() {}
	}
	if err := watcher.Watch(cfg.ArchivePath); err != nil {
		log.Printf("warning: watching archive: %v", err)
	}
	watcher.Start()
	return watcher.Stop
}

func openBrowser(url string) {
	for range browserPollAttempts {
		time.Sleep(browserPollInterval)
		resp, err := http.Get(url + "/api/v1/stats")
		if err == nil {
			resp.Body.Close()
			break
		}
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32",
			"url.dll,FileProtocolHandler", url)
	default:
		return
	}
	_ = cmd.Run()
}
