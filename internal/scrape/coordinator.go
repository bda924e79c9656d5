package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"spimex-data/internal/download"
	"spimex-data/internal/metrics"
	"spimex-data/internal/model"
	"spimex-data/internal/store"
)

// Trigger outcomes callers branch on.
var (
	ErrAlreadyRunning    = errors.New("a scrape run is already active")
	ErrMigrationRequired = errors.New("trading results table is missing, migration required")
)

// State of the coordinator.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Status is a point-in-time snapshot of the coordinator.
type Status struct {
	State            State     `json:"state"`
	RunID            string    `json:"run_id,omitempty"`       // current or most recent run
	LastOutcome      string    `json:"last_outcome,omitempty"` // "success" or "failure"
	LastError        string    `json:"last_error,omitempty"`
	StartedAt        time.Time `json:"started_at,omitempty"`
	FinishedAt       time.Time `json:"finished_at,omitempty"`
	Downloaded       int       `json:"downloaded"`
	DownloadFailures int       `json:"download_failures"`
	RowsPersisted    int       `json:"rows_persisted"`
}

// LinkDiscoverer walks the listing site. Satisfied by *discovery.Discoverer.
type LinkDiscoverer interface {
	Discover(ctx context.Context, lastDate *time.Time) ([]model.DiscoveredLink, error)
}

// FileDownloader fetches links into a directory. Satisfied by *download.Downloader.
type FileDownloader interface {
	FetchAll(ctx context.Context, links []model.DiscoveredLink, destDir string) download.Report
}

// RowExtractor parses downloaded files. Satisfied by *extract.Extractor.
type RowExtractor interface {
	ExtractDir(ctx context.Context, dir string) ([][]model.TradeResult, error)
}

// ResultStore is the persistence collaborator. Satisfied by *store.Store.
type ResultStore interface {
	CountRows(ctx context.Context) (int64, error)
	LastTradeDate(ctx context.Context) (*time.Time, error)
	SaveAll(ctx context.Context, groups [][]model.TradeResult) error
}

// Config holds coordinator settings.
type Config struct {
	ScratchDir string
}

// Coordinator sequences one scrape run at a time:
// discover -> download -> extract -> persist.
//
// Mutual exclusion is a compare-and-set on a single flag; a second trigger
// while a run is active is rejected immediately, never queued.
type Coordinator struct {
	cfg        Config
	store      ResultStore
	discoverer LinkDiscoverer
	downloader FileDownloader
	extractor  RowExtractor
	logger     *slog.Logger

	running atomic.Bool

	mu     sync.Mutex
	status Status

	wg sync.WaitGroup // in-flight background run, for graceful shutdown
}

// New creates a Coordinator.
func New(
	cfg Config,
	store ResultStore,
	discoverer LinkDiscoverer,
	downloader FileDownloader,
	extractor RowExtractor,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		cfg:        cfg,
		store:      store,
		discoverer: discoverer,
		downloader: downloader,
		extractor:  extractor,
		logger:     logger,
	}
	c.status.State = StateIdle
	return c
}

// Trigger launches a scrape run in the background and returns its run id.
// It returns ErrAlreadyRunning when a run is active and ErrMigrationRequired
// when the target table is missing; in both cases nothing is started.
// Run completion is observable via Status and logs, not via Trigger.
func (c *Coordinator) Trigger(ctx context.Context) (string, error) {
	runID, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// The run outlives the triggering request.
		c.execute(context.Background(), runID)
	}()

	return runID, nil
}

// RunOnce executes a scrape run synchronously. Used by the CLI binary.
func (c *Coordinator) RunOnce(ctx context.Context) error {
	runID, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	return c.execute(ctx, runID)
}

// Wait blocks until any in-flight background run finishes.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Status returns a snapshot of the coordinator state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// acquire performs the single-flight check-and-set and the migration
// precondition. On success the flag is held by the caller's run.
func (c *Coordinator) acquire(ctx context.Context) (string, error) {
	if !c.running.CompareAndSwap(false, true) {
		metrics.RunsRejected.Inc()
		return "", ErrAlreadyRunning
	}

	rows, err := c.store.CountRows(ctx)
	if err != nil {
		c.running.Store(false)
		return "", fmt.Errorf("check storage precondition: %w", err)
	}
	if rows == store.NoTableSentinel {
		c.running.Store(false)
		return "", ErrMigrationRequired
	}

	runID := uuid.New().String()
	now := time.Now().UTC()

	c.mu.Lock()
	c.status = Status{
		State:     StateRunning,
		RunID:     runID,
		StartedAt: now,
	}
	c.mu.Unlock()

	metrics.RunsStarted.Inc()
	c.logger.Info("scrape run starting", "run_id", runID, "existing_rows", rows)
	return runID, nil
}

// execute runs the pipeline stages. The scratch directory is removed and the
// single-flight flag cleared whatever the outcome.
func (c *Coordinator) execute(ctx context.Context, runID string) (err error) {
	start := time.Now()

	defer func() {
		if rmErr := os.RemoveAll(c.cfg.ScratchDir); rmErr != nil {
			c.logger.Error("scratch dir cleanup failed", "run_id", runID, "dir", c.cfg.ScratchDir, "err", rmErr)
		}

		outcome := "success"
		errText := ""
		if err != nil {
			outcome = "failure"
			errText = err.Error()
			metrics.RunsFailed.Inc()
			c.logger.Error("scrape run failed", "run_id", runID, "err", err, "duration", time.Since(start))
		} else {
			c.logger.Info("scrape run finished", "run_id", runID, "duration", time.Since(start))
		}

		c.mu.Lock()
		c.status.State = StateIdle
		c.status.LastOutcome = outcome
		c.status.LastError = errText
		c.status.FinishedAt = time.Now().UTC()
		c.mu.Unlock()

		c.running.Store(false)
	}()

	if err = os.MkdirAll(c.cfg.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	lastDate, err := c.store.LastTradeDate(ctx)
	if err != nil {
		return fmt.Errorf("query last trade date: %w", err)
	}

	links, err := c.timedDiscover(ctx, lastDate)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	if len(links) == 0 {
		c.logger.Info("no new bulletins", "run_id", runID)
		return nil
	}

	report := c.timedDownload(ctx, links)
	metrics.DownloadsFailed.Add(float64(len(report.Failed)))
	for _, f := range report.Failed {
		c.logger.Warn("bulletin lost for this run", "run_id", runID, "url", f.Link.URL, "err", f.Err)
	}

	c.mu.Lock()
	c.status.Downloaded = report.Succeeded
	c.status.DownloadFailures = len(report.Failed)
	c.mu.Unlock()

	groups, err := c.timedExtract(ctx)
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if err = c.timedPersist(ctx, groups); err != nil {
		return fmt.Errorf("persistence: %w", err)
	}

	rows := 0
	for _, g := range groups {
		rows += len(g)
	}
	metrics.RowsPersisted.Add(float64(rows))

	c.mu.Lock()
	c.status.RowsPersisted = rows
	c.mu.Unlock()

	c.logger.Info("scrape run summary",
		"run_id", runID,
		"links", len(links),
		"downloaded", report.Succeeded,
		"download_failures", len(report.Failed),
		"groups", len(groups),
		"rows", rows,
	)
	return nil
}

func (c *Coordinator) timedDiscover(ctx context.Context, lastDate *time.Time) ([]model.DiscoveredLink, error) {
	t := time.Now()
	defer func() { metrics.StageDuration.WithLabelValues("discover").Observe(time.Since(t).Seconds()) }()
	return c.discoverer.Discover(ctx, lastDate)
}

func (c *Coordinator) timedDownload(ctx context.Context, links []model.DiscoveredLink) download.Report {
	t := time.Now()
	defer func() { metrics.StageDuration.WithLabelValues("download").Observe(time.Since(t).Seconds()) }()
	return c.downloader.FetchAll(ctx, links, c.cfg.ScratchDir)
}

func (c *Coordinator) timedExtract(ctx context.Context) ([][]model.TradeResult, error) {
	t := time.Now()
	defer func() { metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(t).Seconds()) }()
	return c.extractor.ExtractDir(ctx, c.cfg.ScratchDir)
}

func (c *Coordinator) timedPersist(ctx context.Context, groups [][]model.TradeResult) error {
	t := time.Now()
	defer func() { metrics.StageDuration.WithLabelValues("persist").Observe(time.Since(t).Seconds()) }()
	return c.store.SaveAll(ctx, groups)
}
