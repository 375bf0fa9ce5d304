package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"fleetprotax/internal/amqp"
	"fleetprotax/internal/config"
	"fleetprotax/internal/export"
	"fleetprotax/internal/log"
	"fleetprotax/internal/receipts"
	"fleetprotax/internal/storage"
	"fleetprotax/internal/store"
)

const usage = `usage: fleetprotax <command> [args]

commands:
  summary [year]          print the deductible totals for a year
  years                   list the years that carry data
  export [dir]            write a backup archive into dir (default .)
  import <file>           restore a backup archive or JSON export
  csv <year> [file]       write the year's trips as CSV (default stdout)
`

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentApp})
	log.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	kv, err := storage.NewKVStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open record database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer kv.Close()

	blobs, err := receipts.NewDirStore(cfg.ReceiptsDir)
	if err != nil {
		logger.Error("Failed to open receipts directory", "error", err, "path", cfg.ReceiptsDir)
		os.Exit(1)
	}

	opts := []store.Option{store.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		opts = append(opts, store.WithEvents(amqpClient))
	}

	st := store.New(kv, blobs, opts...)

	ctx := context.Background()
	if err := st.Load(ctx); err != nil {
		logger.Error("Failed to load records", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, st, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, st *store.Store, command string, args []string) error {
	switch command {
	case "summary":
		return runSummary(st, args)
	case "years":
		for _, year := range st.AvailableYears() {
			fmt.Println(year)
		}
		return nil
	case "export":
		return runExport(st, args)
	case "import":
		return runImport(ctx, st, args)
	case "csv":
		return runCSV(st, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runSummary(st *store.Store, args []string) error {
	year := st.SelectedYear()
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[0], err)
		}
		year = parsed
	}

	out, err := json.MarshalIndent(st.Summary(year), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runExport(st *store.Store, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	raw, name, err := st.ExportArchive()
	if err != nil {
		return fmt.Errorf("export backup: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	fmt.Println(path)
	return nil
}

func runImport(ctx context.Context, st *store.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("import needs a file argument")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}
	return st.ImportBackup(ctx, raw)
}

func runCSV(st *store.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("csv needs a year argument")
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", args[0], err)
	}

	out := os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("create csv file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return export.WriteYearCSV(out, year, st.Trips(), st.Summary(year))
}
