// Command treetab infers a relational schema from XML or HTML documents and
// prints extracted rows as JSON lines. Each input file is an independent
// document; files are processed concurrently.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/treetab/internal/config"
	"github.com/usestring/treetab/internal/logging"
	"github.com/usestring/treetab/pkg/document"
	"github.com/usestring/treetab/pkg/tabular"
)

func main() {
	cfg := config.Load()

	var (
		asHTML       = flag.Bool("html", false, "parse inputs as lenient HTML instead of XML")
		schemaOnly   = flag.Bool("schema-only", false, "print the inferred schema as JSON Schema and exit")
		depth        = flag.Int("depth", cfg.DepthLimit, "structural analysis depth limit")
		rootSel      = flag.String("root", "", "XPath selector for the analysis anchor")
		recordSel    = flag.String("records", "", "XPath selector for the record-bearing element")
		ignoreErrors = flag.Bool("ignore-errors", false, "skip files that cannot be read or parsed")
		maxFileSize  = flag.Int64("max-file-size", cfg.MaxFileSize, "maximum input file size in bytes")
		workers      = flag.Int("workers", cfg.Workers, "number of files processed concurrently")
	)
	flag.Parse()

	cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(1)
	}
	defer cleanup()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: treetab [flags] <file-or-glob>...")
		os.Exit(2)
	}

	files, err := expandGlobs(flag.Args())
	if err != nil {
		slog.Error("glob expansion failed", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		slog.Error("no files matched", "patterns", flag.Args())
		os.Exit(1)
	}

	opts := tabular.DefaultOptions()
	opts.DepthLimit = *depth
	opts.RootSelector = *rootSel
	opts.RecordSelector = *recordSel

	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)

	var g errgroup.Group
	g.SetLimit(*workers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			err := processFile(file, opts, *asHTML, *schemaOnly, *maxFileSize, &mu, enc)
			if err != nil && *ignoreErrors {
				slog.Warn("skipping file", "file", file, "error", err)
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if matches == nil {
			// Literal path without glob metacharacters
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	return files, nil
}

func processFile(file string, opts tabular.Options, asHTML, schemaOnly bool, maxSize int64, mu *sync.Mutex, enc *json.Encoder) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	if info.Size() > maxSize {
		return fmt.Errorf("%s exceeds maximum file size (%d bytes)", file, maxSize)
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var doc *document.Document
	if asHTML {
		doc, err = document.ParseHTML(f)
	} else {
		doc, err = document.Parse(f, document.ParseOptions{})
	}
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	columns, err := tabular.InferSchema(doc, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if schemaOnly {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(map[string]any{
			"file":   file,
			"schema": tabular.JSONSchema(columns),
		})
	}

	rows, err := tabular.ExtractRows(doc, columns, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	slog.Debug("extracted rows", "file", file, "rows", len(rows), "columns", len(columns))

	mu.Lock()
	defer mu.Unlock()
	for _, row := range rows {
		out := make(map[string]any, len(columns))
		for i, col := range columns {
			out[col.Name] = row[i].Interface()
		}
		if err := enc.Encode(map[string]any{"file": file, "row": out}); err != nil {
			return err
		}
	}
	return nil
}
