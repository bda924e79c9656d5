package download

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spimex-data/internal/model"
)

// Fetcher streams one URL to a local file. Satisfied by *site.Client.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// Failure records one link that could not be fetched.
type Failure struct {
	Link model.DiscoveredLink
	Err  error
}

// Report summarizes a download batch. A failed link leaves no file in the
// destination directory; the batch itself never fails.
type Report struct {
	Attempted int
	Succeeded int
	Failed    []Failure
}

// Downloader fetches discovered bulletin files concurrently.
type Downloader struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// New creates a Downloader.
func New(fetcher Fetcher, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchAll downloads every link into destDir, one goroutine per link.
// Concurrency is bounded by the fetcher's connection pool, not per batch.
// Individual failures are logged and reported; they abort nothing.
func (d *Downloader) FetchAll(ctx context.Context, links []model.DiscoveredLink, destDir string) Report {
	start := time.Now()

	var (
		mu     sync.Mutex
		failed []Failure
	)

	g := new(errgroup.Group)
	for _, link := range links {
		link := link
		g.Go(func() error {
			dest := filepath.Join(destDir, link.Filename)
			if err := d.fetcher.Download(ctx, link.URL, dest); err != nil {
				d.logger.Error("download failed",
					"url", link.URL,
					"file", link.Filename,
					"err", err,
				)
				mu.Lock()
				failed = append(failed, Failure{Link: link, Err: err})
				mu.Unlock()
				return nil
			}
			d.logger.Debug("downloaded", "file", link.Filename)
			return nil
		})
	}
	g.Wait()

	report := Report{
		Attempted: len(links),
		Succeeded: len(links) - len(failed),
		Failed:    failed,
	}

	d.logger.Info("download batch complete",
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"duration", time.Since(start),
	)

	return report
}
