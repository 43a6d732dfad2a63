package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skyportal/internal/db"
	"skyportal/internal/tracker"
	"skyportal/pkg/adsb"
	"skyportal/pkg/config"
	"skyportal/pkg/geo"
)

// The collector has no screen; the bounding box for box-queried sources is
// built against the display panel's native proportions so headless and
// interactive runs watch the same patch of sky.
const panelAspect = 4.0 / 3.0

// Collector continuously polls the configured aircraft source and appends
// every kept state to the sighting log. Running it beside the display lets
// the history be mined later without a second set of API calls.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	maxAge := flag.Duration("max-age", 24*time.Hour, "Sighting retention window")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  skyportal sighting collector")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	if !cfg.Database.Enabled {
		log.Fatal("Sighting log is disabled in configuration (database.enabled)")
	}

	log.Printf("Configuration loaded from: %s", *configPath)
	log.Printf("Source: %s, refresh every %ds", cfg.Source.Name, cfg.Source.RefreshIntervalSeconds)
	log.Printf("Map center: %.4f, %.4f (%.0f mi grid)", cfg.Map.CenterLat, cfg.Map.CenterLon, cfg.Map.GridWidthMiles)

	box, err := geo.BuildBoundingBox(cfg.Map.CenterLat, cfg.Map.CenterLon, cfg.Map.GridWidthMiles, panelAspect)
	if err != nil {
		log.Fatalf("Invalid map configuration: %v", err)
	}

	log.Println("Connecting to sighting log...")
	database, err := db.ReconnectWithRetry(cfg.Database, 5, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("Database ready")

	ctrl, err := tracker.NewFromConfig(cfg, box)
	if err != nil {
		log.Fatalf("%v", err)
	}

	collector := &Collector{
		ctrl:   ctrl,
		repo:   db.NewSightingRepository(database),
		db:     database,
		source: cfg.Source.Name,
		maxAge: *maxAge,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	doneChan := make(chan struct{})
	go func() {
		defer close(doneChan)
		collector.Run(ctx)
	}()

	log.Println("Collector started, press Ctrl+C to stop")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
		<-doneChan
	case <-doneChan:
	}

	log.Println("Collector stopped")
}

// Collector drives the poll-record loop.
type Collector struct {
	ctrl   *tracker.Controller
	repo   *db.SightingRepository
	db     *db.DB
	source string
	maxAge time.Duration

	cycles   int
	recorded int
}

// Run polls on the refresh cadence until the context is cancelled. A single
// failed cycle is logged and retried on the next interval; only a dead
// database connection is fatal.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.ctrl.Interval())
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	// First cycle immediately, then on the tick.
	c.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cycle(ctx)
		case <-cleanup.C:
			deleted, err := c.db.Cleanup(ctx, c.maxAge)
			if err != nil {
				log.Printf("Sighting cleanup failed: %v", err)
			} else if deleted > 0 {
				log.Printf("Cleaned up %d sightings older than %v", deleted, c.maxAge)
			}
		}
	}
}

// cycle runs one refresh and records the kept set. Transient upstream
// failures get a short in-cycle retry with backoff before giving up until
// the next interval.
func (c *Collector) cycle(ctx context.Context) {
	batch, err := adsb.RetryWithBackoff(ctx, adsb.RetryConfig{
		MaxRetries:   2,
		InitialDelay: 2 * time.Second,
		MaxDelay:     15 * time.Second,
		Multiplier:   2.0,
	}, func() (adsb.Batch, error) {
		return c.ctrl.Poll(ctx)
	})

	stats := c.ctrl.Apply(batch, err)
	c.cycles++
	if err != nil {
		return
	}

	if err := c.repo.RecordBatch(ctx, c.source, c.ctrl.APITime(), c.ctrl.Aircraft()); err != nil {
		log.Printf("Failed to record sightings: %v", err)
		return
	}
	c.recorded += stats.Kept

	if c.cycles%20 == 0 {
		log.Printf("Collector: %d cycles, %d sightings recorded", c.cycles, c.recorded)
	}
}
