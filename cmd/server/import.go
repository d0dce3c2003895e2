// CLAUDE:SUMMARY CLI subcommand that bulk-loads visit records into SQLite from a CSV export.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/visit-ledger/pkg/importer"
	"github.com/hazyhaar/visit-ledger/pkg/store"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	csvPath := fs.String("csv", "", "path to the CSV file to import")
	formatPath := fs.String("format", "", "path to the import format file (YAML)")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  visit-ledger import --csv <file> [--format <format.yaml>] [--config <config.yaml>]")
		os.Exit(1)
	}

	cfg := loadConfig(*cfgPath, logger)

	format := importer.DefaultFormat()
	if *formatPath != "" {
		var err error
		format, err = importer.LoadFormat(*formatPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading format: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("[%s] Importing...\n", *csvPath)
	res, err := importer.ImportFile(*csvPath, format, db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[%s] OK: %d imported, %d skipped -> %s\n", *csvPath, res.Imported, res.Skipped, cfg.DBPath)
}
