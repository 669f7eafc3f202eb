package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stocktracker/config"
	"stocktracker/jobs"
	"stocktracker/models"
	"stocktracker/providers/alphavantage"
	"stocktracker/providers/finnhub"
	"stocktracker/providers/newsapi"
	"stocktracker/store"
)

func main() {
	log.Println("==============================================")
	log.Println("  Stock Tracker Ingestion Backend - Starting...")
	log.Println("==============================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	log.Println("Running database migrations...")
	if err := models.MigrateModels(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	st := store.New(db)
	if err := seedTrackedSymbols(st); err != nil {
		log.Printf("Warning: Could not seed tracked symbols: %v", err)
	}

	quoteJob, indicatorJob, newsJob := buildJobs(cfg, st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); quoteJob.Run(ctx) }()
	go func() { defer wg.Done(); indicatorJob.Run(ctx) }()
	go func() { defer wg.Done(); newsJob.Run(ctx) }()

	router := gin.New()
	router.Use(gin.Recovery())
	setupOpsEndpoints(router, db, quoteJob, indicatorJob, newsJob)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("All jobs stopped, goodbye")
}

// buildJobs wires the provider clients, ledger, and sweeper into the three
// ingestion jobs from the loaded configuration.
func buildJobs(cfg *config.Config, st *store.Store) (*jobs.QuoteJob, *jobs.IndicatorJob, *jobs.NewsJob) {
	avClient := alphavantage.NewClient(alphavantage.Config{
		APIKey:  cfg.AlphaVantageKey,
		BaseURL: cfg.AlphaVantageURL,
	})
	fhClient := finnhub.NewClient(finnhub.Config{
		APIKey:  cfg.FinnhubKey,
		BaseURL: cfg.FinnhubURL,
	})
	newsClient := newsapi.NewClient(newsapi.Config{
		APIKey:  cfg.NewsAPIKey,
		BaseURL: cfg.NewsAPIURL,
	})

	ledger := jobs.NewLedger(st)
	sweeper := jobs.NewSweeper(st, jobs.DefaultRetention)

	quoteHour, quoteMin := mustClockTime(cfg.QuoteWindow)
	indicatorHour, indicatorMin := mustClockTime(cfg.IndicatorTime)
	newsHour, newsMin := mustClockTime(cfg.NewsTime)

	quoteJob := jobs.NewQuoteJob(st, avClient, fhClient, ledger, sweeper, jobs.QuoteJobConfig{
		WindowHour:   quoteHour,
		WindowMinute: quoteMin,
	})
	indicatorJob := jobs.NewIndicatorJob(st, avClient, jobs.IndicatorJobConfig{
		TriggerHour:   indicatorHour,
		TriggerMinute: indicatorMin,
	})
	newsJob := jobs.NewNewsJob(st, newsClient, jobs.NewsJobConfig{
		TriggerHour:   newsHour,
		TriggerMinute: newsMin,
	})
	return quoteJob, indicatorJob, newsJob
}

func mustClockTime(s string) (int, int) {
	hour, min, err := config.ParseClockTime(s)
	if err != nil {
		log.Fatalf("Bad schedule time: %v", err)
	}
	return hour, min
}

// seedTrackedSymbols inserts a starter watch list on an empty database so a
// fresh deployment has something to ingest.
func seedTrackedSymbols(st *store.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return st.SeedTrackedSymbols(ctx, []models.TrackedSymbol{
		{Symbol: "AAPL", Name: "Apple"},
		{Symbol: "MSFT", Name: "Microsoft"},
		{Symbol: "GOOGL", Name: "Alphabet"},
		{Symbol: "AMZN", Name: "Amazon"},
		{Symbol: "NVDA", Name: "Nvidia"},
	})
}

// setupOpsEndpoints registers the operational health and status endpoints.
// The ingestion subsystem has no request/response API of its own beyond these.
func setupOpsEndpoints(router *gin.Engine, db *gorm.DB, quoteJob *jobs.QuoteJob, indicatorJob *jobs.IndicatorJob, newsJob *jobs.NewsJob) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/status", func(c *gin.Context) {
		dbOK := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbOK = false
		}
		c.JSON(http.StatusOK, gin.H{
			"database": dbOK,
			"jobs": gin.H{
				"quote":     formatLastRun(quoteJob.LastRun()),
				"indicator": formatLastRun(indicatorJob.LastRun()),
				"news":      formatLastRun(newsJob.LastRun()),
			},
		})
	})
}

func formatLastRun(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
