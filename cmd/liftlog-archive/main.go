package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/liftlog/internal/archive"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	dir := flag.String("dir", "", "archive directory (default ~/.liftlog)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-archive", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-archive -server <URL> [-dir <path>]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	if *dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*dir = filepath.Join(home, ".liftlog")
	}

	arch, err := archive.Open(*dir)
	if err != nil {
		log.Error("failed to open archive", "error", err)
		os.Exit(1)
	}
	defer arch.Close()

	client := archive.NewClient(*serverURL)

	sessions, err := client.FetchCompletedSessions()
	if err != nil {
		log.Error("failed to list sessions", "error", err)
		os.Exit(1)
	}

	var archived, skipped int
	for _, s := range sessions {
		id := s.ID.String()
		have, err := arch.Has(id)
		if err != nil {
			log.Error("archive lookup failed", "session_id", id, "error", err)
			os.Exit(1)
		}
		if have {
			skipped++
			continue
		}

		full, err := client.FetchSession(id)
		if err != nil {
			log.Error("failed to fetch session", "session_id", id, "error", err)
			os.Exit(1)
		}
		prs, err := client.FetchRecords(id)
		if err != nil {
			log.Error("failed to fetch records", "session_id", id, "error", err)
			os.Exit(1)
		}

		if err := arch.Store(full, prs); err != nil {
			log.Error("failed to archive session", "session_id", id, "error", err)
			os.Exit(1)
		}
		archived++
		log.Info("archived session", "session_id", id, "records", len(prs))
	}

	log.Info("archive complete", "archived", archived, "skipped", skipped)
}
