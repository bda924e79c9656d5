package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"spimex-data/internal/model"
)

const filenameDateLayout = "02.01.2006"

// Config holds extraction settings.
type Config struct {
	// Concurrency bounds the parser worker pool. Zero means NumCPU.
	// Parsing is CPU-bound and must not monopolize the scheduler while
	// sibling runs' network I/O is in flight.
	Concurrency int
}

// Extractor parses downloaded bulletin spreadsheets into trade records.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		logger: logger,
	}
}

// ExtractDir parses every file in dir on a bounded worker pool and returns
// one row group per successfully parsed file. A file that fails to parse is
// logged and contributes no group; it aborts nothing else. Row formats vary
// across years, so per-file failures are expected.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) ([][]model.TradeResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	concurrency := e.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	start := time.Now()
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	results := make([][]model.TradeResult, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			rows, err := ExtractFile(filepath.Join(dir, name))
			if err != nil {
				e.logger.Error("extraction failed",
					"file", name,
					"err", err,
				)
				return
			}
			results[i] = rows
		}(i, name)
	}
	wg.Wait()

	var groups [][]model.TradeResult
	rowCount := 0
	for _, rows := range results {
		if len(rows) > 0 {
			groups = append(groups, rows)
			rowCount += len(rows)
		}
	}

	e.logger.Info("extraction complete",
		"files", len(names),
		"groups", len(groups),
		"rows", rowCount,
		"duration", time.Since(start),
	)

	return groups, nil
}

// ExtractFile parses one bulletin spreadsheet. The trading session date is
// taken from the filename, which the downloader names "{dd.mm.yyyy}.{ext}".
func ExtractFile(path string) ([]model.TradeResult, error) {
	date, err := sessionDate(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return parseBulletin(path, date)
}

// sessionDate recovers the trading date from a downloaded filename.
func sessionDate(name string) (time.Time, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	date, err := time.Parse(filenameDateLayout, stem)
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %q carries no session date: %w", name, err)
	}
	return date, nil
}
