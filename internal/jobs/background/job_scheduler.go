package background

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"cityshops/internal/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const (
	cartCleanupInterval = time.Hour
	lowStockInterval    = 30 * time.Minute
	jobTimeout          = 2 * time.Minute
)

// StaleCartRemover deletes cart entries that have not been touched since olderThan.
type StaleCartRemover interface {
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// LowStockLister lists products at or below a stock threshold.
type LowStockLister interface {
	ListLowStock(ctx context.Context, threshold int) ([]*models.LowStockProduct, error)
}

// Options configures the recurring jobs.
type Options struct {
	CartTTL           time.Duration
	LowStockThreshold int
}

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	carts     StaleCartRemover
	products  LowStockLister
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with the cart cleanup and low-stock jobs registered.
func NewJobScheduler(carts StaleCartRemover, products LowStockLister, opts Options, logger *slog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	js := &JobScheduler{
		scheduler: scheduler,
		carts:     carts,
		products:  products,
		opts:      opts,
		logger:    logger.With("component", "scheduler"),
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", "jobs", js.JobNames())
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobNames returns the registered job names in sorted order.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (js *JobScheduler) registerJobs() error {
	if err := js.addJob("cart-cleanup", cartCleanupInterval, js.CleanupStaleCarts); err != nil {
		return err
	}
	return js.addJob("low-stock-report", lowStockInterval, js.ReportLowStock)
}

func (js *JobScheduler) addJob(name string, interval time.Duration, task func(context.Context) error) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := task(ctx); err != nil {
				js.logger.Error("background job failed", "job", name, "error", err)
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	js.jobs[name] = job
	return nil
}

// CleanupStaleCarts removes cart entries not updated within the cart TTL.
func (js *JobScheduler) CleanupStaleCarts(ctx context.Context) error {
	cutoff := js.now().Add(-js.opts.CartTTL)
	removed, err := js.carts.DeleteStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete stale cart entries: %w", err)
	}
	js.logger.Info("stale cart entries removed", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	return nil
}

// ShopStockReport is the low-stock summary for one shop.
type ShopStockReport struct {
	ShopID   uuid.UUID
	ShopName string
	Products []*models.LowStockProduct
}

// ReportLowStock logs products at or below the threshold, one entry per shop.
func (js *JobScheduler) ReportLowStock(ctx context.Context) error {
	products, err := js.products.ListLowStock(ctx, js.opts.LowStockThreshold)
	if err != nil {
		return fmt.Errorf("failed to list low stock products: %w", err)
	}

	reports := GroupLowStockByShop(products)
	for _, report := range reports {
		items := make([]any, 0, len(report.Products))
		for _, p := range report.Products {
			items = append(items, slog.Group(p.ProductID.String(),
				"name", p.ProductName,
				"stock", p.StockQuantity,
			))
		}
		js.logger.Warn("low stock",
			"shop_id", report.ShopID,
			"shop_name", report.ShopName,
			"threshold", js.opts.LowStockThreshold,
			slog.Group("products", items...),
		)
	}
	js.logger.Info("low stock report completed", "shops", len(reports), "products", len(products))
	return nil
}

// GroupLowStockByShop groups rows by shop, keeping the first-seen shop order.
func GroupLowStockByShop(products []*models.LowStockProduct) []*ShopStockReport {
	index := make(map[uuid.UUID]*ShopStockReport)
	var reports []*ShopStockReport
	for _, p := range products {
		report, ok := index[p.ShopID]
		if !ok {
			report = &ShopStockReport{ShopID: p.ShopID, ShopName: p.ShopName}
			index[p.ShopID] = report
			reports = append(reports, report)
		}
		report.Products = append(report.Products, p)
	}
	return reports
}
