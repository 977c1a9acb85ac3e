package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lazycache/internal/config"
	"lazycache/internal/health"
	"lazycache/internal/loader"
	"lazycache/internal/logs"
	"lazycache/internal/metrics"
	"lazycache/internal/store"
)

// Session is the demo payload: a short-lived login session keyed by token.
type Session struct {
	User      string
	CreatedAt time.Time
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	// Logger
	logger := logs.NewLogger(cfg.LogBufferSize, cfg.LogLevel)

	// Metrics
	registry := metrics.NewRegistry()

	// Store
	storeCfg := store.DefaultConfig[string, Session]()
	storeCfg.DefaultLifespan = cfg.DefaultLifespan
	storeCfg.Serialized = cfg.Serialized
	storeCfg.Metrics = registry
	storeCfg.Logger = logger
	storeCfg.DefaultCallback = func(sess Session, s *store.Store[string, Session], lifetime int64, self store.Callback[string, Session]) {
		fmt.Printf("session for %q expired after living %ds\n", sess.User, lifetime)
	}

	sessions, err := store.NewWithConfig(storeCfg)
	if err != nil {
		log.Fatal(err)
	}

	// Cache a session for two seconds.
	token := uuid.NewString()
	if _, err := sessions.Cache(token, Session{User: "ada", CreatedAt: time.Now()}, 2*time.Second); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("cached session %s, size=%d, remaining=%ds\n",
		token, sessions.Size(), sessions.RemainingSeconds(token))

	// Nothing happens when the lifespan elapses. The expiry is discovered,
	// and the callback fired, only when the store is next touched.
	time.Sleep(2100 * time.Millisecond)
	fmt.Println("lifespan elapsed, store not yet touched...")
	fmt.Printf("size=%d (discovery happened here)\n", sessions.Size())

	// Read-through loading: misses fetch from a slow source, concurrent
	// misses share one fetch.
	profiles, err := loader.New(loader.Config[string, string]{
		Store: store.New[string, string](),
		Fetch: func(ctx context.Context, user string) (string, error) {
			time.Sleep(200 * time.Millisecond) // pretend this is a database
			return "profile of " + user, nil
		},
		Lifespan: cfg.LoaderLifespan,
		Retry:    loader.DefaultRetryPolicy(),
		Metrics:  registry,
		Logger:   logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := time.Now()
		profile, err := profiles.GetOrLoad(ctx, "ada")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("got %q in %s\n", profile, time.Since(start).Round(time.Millisecond))
	}

	// Health report over everything the run recorded.
	report := health.NewAnalyzer(registry, logger).Analyze()
	fmt.Printf("health: %s — %s\n", report.OverallStatus, report.Summary)
	for _, signal := range report.Signals {
		fmt.Println("  signal:", signal)
	}

	fmt.Println("recent log records:")
	for _, record := range logger.GetLast(5) {
		fmt.Printf("  [%s] %s\n", record.Level, record.Message)
	}
}
