package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spimex-data/internal/model"
)

// PageSource fetches listing pages. Satisfied by *site.Client.
type PageSource interface {
	BaseURL() string
	FetchPage(ctx context.Context, path string) (string, error)
}

// Config holds discovery settings.
type Config struct {
	StartPath  string // first listing page, site-relative
	CutoffYear int    // bulletins from this year and earlier are never ingested
}

// Discoverer walks the bulletin listing newest-first and collects download
// links until the incremental or historical boundary is reached.
type Discoverer struct {
	cfg    Config
	source PageSource
	logger *slog.Logger
}

// New creates a Discoverer.
func New(cfg Config, source PageSource, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		cfg:    cfg,
		source: source,
		logger: logger,
	}
}

// Discover paginates the listing and returns bulletin links newest-first.
// lastDate is the latest persisted trading date (nil for an empty table);
// entries dated at or before it stop discovery, as does any entry dated in
// the cutoff year. Listing fetch and parse failures are fatal: a partial
// view of the listing cannot be trusted to decide the stop condition.
func (d *Discoverer) Discover(ctx context.Context, lastDate *time.Time) ([]model.DiscoveredLink, error) {
	var links []model.DiscoveredLink

	page := d.cfg.StartPath
	pageCount := 0

	for {
		pageCount++
		d.logger.Debug("fetching listing page", "page", pageCount, "path", page)

		html, err := d.source.FetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", pageCount, err)
		}

		entries, nextPath, err := parseListingPage(html)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", pageCount, err)
		}

		for _, entry := range entries {
			if d.reachedBoundary(entry, lastDate) {
				d.logger.Info("discovery stop condition reached",
					"date", entry.dateText,
					"links", len(links),
					"pages", pageCount,
				)
				return links, nil
			}

			ext := fileExtension(entry.href)
			link := model.DiscoveredLink{
				URL:      d.source.BaseURL() + entry.href,
				Filename: entry.dateText + "." + ext,
			}
			links = append(links, link)
			d.logger.Debug("discovered bulletin",
				"n", len(links),
				"url", link.URL,
				"file", link.Filename,
			)
		}

		if nextPath == "" {
			d.logger.Info("discovery reached last listing page",
				"links", len(links),
				"pages", pageCount,
			)
			return links, nil
		}
		page = nextPath
	}
}

// reachedBoundary reports whether an entry is already persisted or falls in
// the historical cutoff year.
func (d *Discoverer) reachedBoundary(entry listingEntry, lastDate *time.Time) bool {
	if lastDate != nil && !entry.date.After(*lastDate) {
		return true
	}
	return entry.date.Year() == d.cfg.CutoffYear
}
