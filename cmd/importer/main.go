// Command importer loads a JSON export of the legacy document store into
// the database, then recomputes the denormalized counters.
package main

import (
	"context"
	"flag"
	"flashinfos/internal/config"
	"flashinfos/internal/db"
	"flashinfos/internal/services"
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("file", "export.json", "path of the JSON export")
	reconcile := flag.Bool("reconcile", true, "recompute comment and article counts after the import")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	result, err := importFile(context.Background(), gdb, *path, *reconcile)
	if err != nil {
		return err
	}
	slog.Info("import finished",
		"categories", result.Categories,
		"articles", result.Articles,
		"comments", result.Comments,
		"skipped", result.Skipped)
	return nil
}

func importFile(ctx context.Context, gdb *gorm.DB, path string, reconcile bool) (services.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return services.ImportResult{}, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	result, err := services.NewImporter(gdb).Import(ctx, f)
	if err != nil {
		return result, fmt.Errorf("import %s: %w", path, err)
	}
	if reconcile {
		if err := services.NewReconciler(gdb).Run(ctx); err != nil {
			return result, fmt.Errorf("reconcile: %w", err)
		}
	}
	return result, nil
}
