package scrape

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spimex-data/internal/download"
	"spimex-data/internal/model"
	"spimex-data/internal/store"
)

type fakeStore struct {
	rows        int64
	countErr    error
	lastDate    *time.Time
	saveErr     error
	saveCalls   int
	savedGroups [][]model.TradeResult
	saveGate    chan struct{} // when set, SaveAll blocks until closed
}

func (f *fakeStore) CountRows(ctx context.Context) (int64, error) {
	return f.rows, f.countErr
}

func (f *fakeStore) LastTradeDate(ctx context.Context) (*time.Time, error) {
	return f.lastDate, nil
}

func (f *fakeStore) SaveAll(ctx context.Context, groups [][]model.TradeResult) error {
	if f.saveGate != nil {
		<-f.saveGate
	}
	f.saveCalls++
	f.savedGroups = groups
	return f.saveErr
}

type fakeDiscoverer struct {
	links []model.DiscoveredLink
	err   error
	calls int
}

func (f *fakeDiscoverer) Discover(ctx context.Context, lastDate *time.Time) ([]model.DiscoveredLink, error) {
	f.calls++
	return f.links, f.err
}

type fakeDownloader struct {
	report download.Report
	calls  int
}

func (f *fakeDownloader) FetchAll(ctx context.Context, links []model.DiscoveredLink, destDir string) download.Report {
	f.calls++
	// Leave a file behind so cleanup is observable.
	_ = os.WriteFile(filepath.Join(destDir, "bulletin.xls"), []byte("x"), 0o644)
	if f.report.Attempted == 0 {
		f.report.Attempted = len(links)
		f.report.Succeeded = len(links)
	}
	return f.report
}

type fakeExtractor struct {
	groups [][]model.TradeResult
	err    error
	calls  int
}

func (f *fakeExtractor) ExtractDir(ctx context.Context, dir string) ([][]model.TradeResult, error) {
	f.calls++
	return f.groups, f.err
}

func testLinks(n int) []model.DiscoveredLink {
	links := make([]model.DiscoveredLink, n)
	for i := range links {
		links[i] = model.DiscoveredLink{
			URL:      "https://spimex.com/files/bulletin.xls",
			Filename: "10.01.2025.xls",
		}
	}
	return links
}

func testGroups() [][]model.TradeResult {
	return [][]model.TradeResult{
		{{ExchangeProductID: "A100ANS060F", Date: time.Now()}},
	}
}

func newTestCoordinator(t *testing.T, st *fakeStore, d *fakeDiscoverer, dl *fakeDownloader, ex *fakeExtractor) (*Coordinator, string) {
	t.Helper()
	scratch := filepath.Join(t.TempDir(), "scratch")
	c := New(Config{ScratchDir: scratch}, st, d, dl, ex, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return c, scratch
}

func TestTriggerRejectsConcurrentRun(t *testing.T) {
	gate := make(chan struct{})
	st := &fakeStore{rows: 0, saveGate: gate}
	d := &fakeDiscoverer{links: testLinks(1)}
	ex := &fakeExtractor{groups: testGroups()}
	c, _ := newTestCoordinator(t, st, d, &fakeDownloader{}, ex)

	first, err := c.Trigger(context.Background())
	if err != nil {
		t.Fatalf("first Trigger: %v", err)
	}
	if first == "" {
		t.Fatal("first Trigger returned empty run id")
	}

	// The run is parked inside SaveAll; a second trigger must be rejected.
	deadline := time.After(2 * time.Second)
	for {
		if _, err = c.Trigger(context.Background()); errors.Is(err, ErrAlreadyRunning) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("second Trigger: got %v, want ErrAlreadyRunning", err)
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(gate)
	c.Wait()

	status := c.Status()
	if status.State != StateIdle {
		t.Errorf("State after run = %q, want %q", status.State, StateIdle)
	}
	if status.LastOutcome != "success" {
		t.Errorf("LastOutcome = %q, want success", status.LastOutcome)
	}
	if status.RunID != first {
		t.Errorf("RunID = %q, want %q", status.RunID, first)
	}

	// The flag is released; a new run may start.
	if _, err = c.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger after completed run: %v", err)
	}
	c.Wait()
}

func TestTriggerRequiresMigratedTable(t *testing.T) {
	st := &fakeStore{rows: store.NoTableSentinel}
	c, _ := newTestCoordinator(t, st, &fakeDiscoverer{}, &fakeDownloader{}, &fakeExtractor{})

	if _, err := c.Trigger(context.Background()); !errors.Is(err, ErrMigrationRequired) {
		t.Fatalf("Trigger = %v, want ErrMigrationRequired", err)
	}

	// Precondition failure must release the flag.
	st.rows = 0
	if _, err := c.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger after migration: %v", err)
	}
	c.Wait()
}

func TestRunOnceCleansUpOnFailure(t *testing.T) {
	boom := errors.New("sheet is garbage")
	st := &fakeStore{rows: 10}
	ex := &fakeExtractor{err: boom}
	c, scratch := newTestCoordinator(t, st, &fakeDiscoverer{links: testLinks(2)}, &fakeDownloader{}, ex)

	err := c.RunOnce(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("RunOnce = %v, want wrapped %v", err, boom)
	}

	if _, statErr := os.Stat(scratch); !os.IsNotExist(statErr) {
		t.Errorf("scratch dir %s still exists after failed run", scratch)
	}
	if st.saveCalls != 0 {
		t.Errorf("SaveAll called %d times after extraction failure, want 0", st.saveCalls)
	}

	status := c.Status()
	if status.LastOutcome != "failure" {
		t.Errorf("LastOutcome = %q, want failure", status.LastOutcome)
	}
	if status.LastError == "" {
		t.Error("LastError empty after failed run")
	}

	// A failed run must not wedge the coordinator.
	ex.err = nil
	ex.groups = testGroups()
	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce after failure: %v", err)
	}
}

func TestRunOnceSkipsPipelineWhenUpToDate(t *testing.T) {
	st := &fakeStore{rows: 500}
	d := &fakeDiscoverer{} // no new links
	dl := &fakeDownloader{}
	ex := &fakeExtractor{}
	c, _ := newTestCoordinator(t, st, d, dl, ex)

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if d.calls != 1 {
		t.Errorf("Discover calls = %d, want 1", d.calls)
	}
	if dl.calls != 0 || ex.calls != 0 || st.saveCalls != 0 {
		t.Errorf("downstream stages ran on empty discovery: download=%d extract=%d save=%d",
			dl.calls, ex.calls, st.saveCalls)
	}
	if got := c.Status().LastOutcome; got != "success" {
		t.Errorf("LastOutcome = %q, want success", got)
	}
}

func TestRunOncePersistsExtractedGroups(t *testing.T) {
	st := &fakeStore{rows: 0}
	groups := testGroups()
	c, _ := newTestCoordinator(t, st, &fakeDiscoverer{links: testLinks(3)}, &fakeDownloader{}, &fakeExtractor{groups: groups})

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if st.saveCalls != 1 {
		t.Fatalf("SaveAll calls = %d, want 1", st.saveCalls)
	}
	if len(st.savedGroups) != len(groups) {
		t.Errorf("persisted %d groups, want %d", len(st.savedGroups), len(groups))
	}
}
