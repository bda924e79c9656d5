package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spimex-data/internal/model"
	"spimex-data/internal/scrape"
	"spimex-data/internal/store"
)

const queryDateLayout = "2006-01-02"

// ScrapeCoordinator starts pipeline runs. Satisfied by *scrape.Coordinator.
type ScrapeCoordinator interface {
	Trigger(ctx context.Context) (string, error)
	Status() scrape.Status
}

// TradeStore serves read queries. Satisfied by *store.Store.
type TradeStore interface {
	Version(ctx context.Context) (string, error)
	CountRows(ctx context.Context) (int64, error)
	LastTradingDates(ctx context.Context, days int) ([]string, error)
	Dynamics(ctx context.Context, f store.TradeFilter, start, end time.Time) ([]model.TradeResult, error)
	TradingResults(ctx context.Context, f store.TradeFilter, limit int) ([]model.TradeResult, error)
}

// ResultCache is a read-through cache for query responses.
// Satisfied by *cache.Cache.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Handler holds the collaborators behind the HTTP API.
type Handler struct {
	store   TradeStore
	cache   ResultCache
	scraper ScrapeCoordinator
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(store TradeStore, cache ResultCache, scraper ScrapeCoordinator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   store,
		cache:   cache,
		scraper: scraper,
		logger:  logger,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, metricsPath string) *gin.Engine {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health/", h.Health)
	r.GET("/check-db/", h.CheckDB)
	r.GET("/start-scrape/", h.StartScrape)
	r.GET("/scrape-status/", h.ScrapeStatus)
	r.GET(metricsPath, gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/get-last-trading-dates/", h.GetLastTradingDates)
		api.GET("/get-dynamics/", h.GetDynamics)
		api.GET("/get-trading-results/", h.GetTradingResults)
	}

	return r
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CheckDB reports the database server version and the number of persisted
// rows. A row count of -1 means the target table has not been migrated yet.
func (h *Handler) CheckDB(c *gin.Context) {
	version, err := h.store.Version(c.Request.Context())
	if err != nil {
		h.logger.Error("database check failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database unreachable"})
		return
	}

	rows, err := h.store.CountRows(c.Request.Context())
	if err != nil {
		h.logger.Error("row count failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"version": version, "rows": rows})
}

// StartScrape launches a scrape run in the background. The response reports
// acceptance only; run progress is visible via /scrape-status/.
func (h *Handler) StartScrape(c *gin.Context) {
	runID, err := h.scraper.Trigger(c.Request.Context())
	switch {
	case errors.Is(err, scrape.ErrAlreadyRunning):
		c.JSON(http.StatusOK, gin.H{"message": "Another scrape run is active."})
	case errors.Is(err, scrape.ErrMigrationRequired):
		c.JSON(http.StatusNotFound, gin.H{"message": "Migration needs to be done."})
	case err != nil:
		h.logger.Error("scrape trigger failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start scrape run"})
	default:
		c.JSON(http.StatusAccepted, gin.H{"message": "The scraper is running.", "run_id": runID})
	}
}

// ScrapeStatus returns a snapshot of the coordinator state.
func (h *Handler) ScrapeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scraper.Status())
}

// GetLastTradingDates lists the dates of the last trading days, newest first.
func (h *Handler) GetLastTradingDates(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "1"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive number"})
		return
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("last_tr_dt_%d", days)

	var cached []string
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		h.logger.Warn("cache read failed", "key", cacheKey, "err", err)
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	dates, err := h.store.LastTradingDates(ctx, days)
	if err != nil {
		h.logger.Error("last trading dates query failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if err := h.cache.Set(ctx, cacheKey, dates); err != nil {
		h.logger.Warn("cache write failed", "key", cacheKey, "err", err)
	}
	c.JSON(http.StatusOK, dates)
}

// GetDynamics lists trades for a product over a date range. All three product
// filters are required; dates default to today.
func (h *Handler) GetDynamics(c *gin.Context) {
	filter := store.TradeFilter{
		OilID:           c.Query("oil_id"),
		DeliveryTypeID:  c.Query("delivery_type_id"),
		DeliveryBasisID: c.Query("delivery_basis_id"),
	}
	if filter.OilID == "" || filter.DeliveryTypeID == "" || filter.DeliveryBasisID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "oil_id, delivery_type_id and delivery_basis_id are required"})
		return
	}

	today := time.Now().UTC().Format(queryDateLayout)
	startText := c.DefaultQuery("start_date", today)
	endText := c.DefaultQuery("end_date", today)

	start, err := time.Parse(queryDateLayout, startText)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := time.Parse(queryDateLayout, endText)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("dynamics_%s_%s_%s_%s_%s",
		filter.OilID, filter.DeliveryTypeID, filter.DeliveryBasisID, startText, endText)

	var cached []model.TradeResult
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		h.logger.Warn("cache read failed", "key", cacheKey, "err", err)
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	results, err := h.store.Dynamics(ctx, filter, start, end)
	if err != nil {
		h.logger.Error("dynamics query failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if err := h.cache.Set(ctx, cacheKey, results); err != nil {
		h.logger.Warn("cache write failed", "key", cacheKey, "err", err)
	}
	c.JSON(http.StatusOK, results)
}

// GetTradingResults lists the most recent trades matching at least one
// product filter.
func (h *Handler) GetTradingResults(c *gin.Context) {
	filter := store.TradeFilter{
		OilID:           c.Query("oil_id"),
		DeliveryTypeID:  c.Query("delivery_type_id"),
		DeliveryBasisID: c.Query("delivery_basis_id"),
	}
	if filter.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "at least one of the trading parameters must be filled in"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "the limit must be a positive number"})
		return
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("trade_results_%s_%s_%s_%d",
		orDash(filter.OilID), orDash(filter.DeliveryTypeID), orDash(filter.DeliveryBasisID), limit)

	var cached []model.TradeResult
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		h.logger.Warn("cache read failed", "key", cacheKey, "err", err)
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	results, err := h.store.TradingResults(ctx, filter, limit)
	if err != nil {
		h.logger.Error("trading results query failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if err := h.cache.Set(ctx, cacheKey, results); err != nil {
		h.logger.Warn("cache write failed", "key", cacheKey, "err", err)
	}
	c.JSON(http.StatusOK, results)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
