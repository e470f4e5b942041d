package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"media-catalog/internal/database"
	"media-catalog/internal/fingerprint"
	"media-catalog/internal/metadata"
	"media-catalog/internal/scanner"
	"media-catalog/internal/thumbnail"
)

// Default database directory path
const defaultDatabaseDir = "./data"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	if err := os.MkdirAll(databaseDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create database directory %s: %v\n", databaseDir, err)
		os.Exit(1)
	}
	dbPath := filepath.Join(databaseDir, "catalog.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	sc := scanner.New(db,
		thumbnail.NewGenerator(os.Getenv("FFMPEG_PATH")),
		metadata.NewExtractor(),
		fingerprint.New(),
	)

	switch command {
	case "scan":
		if !runScan(ctx, sc, os.Args[2:]) {
			os.Exit(1)
		}
	case "duplicates":
		if !showDuplicates(ctx, sc) {
			os.Exit(1)
		}
	case "stats":
		if !showStats(ctx, db) {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Media Catalog Scanner")
	fmt.Println("")
	fmt.Println("Usage: catalog-scan <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  scan <dir> [--flat] [--projects]  - Ingest a directory into the catalog")
	fmt.Println("  duplicates                        - List duplicate clusters")
	fmt.Println("  stats                             - Show catalog statistics")
	fmt.Println("")
	fmt.Println("Scan flags:")
	fmt.Println("  --flat      - Do not recurse into subdirectories")
	fmt.Println("  --projects  - Also ingest DAW/editor project files")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Println("  FFMPEG_PATH  - ffmpeg binary (default: resolved from PATH)")
}

// parseScanArgs splits a scan invocation into the root directory and
// options. The root is the first non-flag argument.
func parseScanArgs(args []string) (string, scanner.Options, error) {
	opts := scanner.Options{IncludeSubfolders: true}
	root := ""

	for _, arg := range args {
		switch arg {
		case "--flat":
			opts.IncludeSubfolders = false
		case "--projects":
			opts.ScanProjects = true
		default:
			if root != "" {
				return "", opts, fmt.Errorf("unexpected argument %q", arg)
			}
			root = arg
		}
	}

	if root == "" {
		return "", opts, fmt.Errorf("scan requires a directory argument")
	}
	return root, opts, nil
}

func runScan(ctx context.Context, sc *scanner.Scanner, args []string) bool {
	root, opts, err := parseScanArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		return false
	}

	report := func(ev scanner.ProgressEvent) {
		if ev.Status == scanner.StatusProcessing {
			fmt.Fprintf(os.Stderr, "  %s\n", ev.File)
		}
	}

	res, err := sc.Scan(ctx, root, opts, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Partial result: %d added, %d skipped, %d errors\n",
			res.Added, res.Skipped, res.Errors)
		return false
	}

	fmt.Printf("Scan complete: %d added, %d skipped, %d errors\n",
		res.Added, res.Skipped, res.Errors)
	return true
}

func showDuplicates(ctx context.Context, sc *scanner.Scanner) bool {
	groups, err := sc.Duplicates(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to query duplicates: %v\n", err)
		return false
	}

	if len(groups) == 0 {
		fmt.Println("No duplicates found")
		return true
	}

	for _, group := range groups {
		fmt.Printf("%s (%d files):\n", group.Fingerprint, len(group.Records))
		for _, rec := range group.Records {
			fmt.Printf("  %s\n", rec.Path)
		}
	}
	return true
}

func showStats(ctx context.Context, db *database.Database) bool {
	stats, err := db.CalculateStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to calculate stats: %v\n", err)
		return false
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to render stats: %v\n", err)
		return false
	}
	fmt.Println(string(out))
	return true
}
