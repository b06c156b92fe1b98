package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/arenad/server/internal/config"
	"github.com/arenad/server/internal/core/ecs"
	"github.com/arenad/server/internal/core/event"
	coresys "github.com/arenad/server/internal/core/system"
	"github.com/arenad/server/internal/data"
	"github.com/arenad/server/internal/persist"
	"github.com/arenad/server/internal/scripting"
	"github.com/arenad/server/internal/system"
	"github.com/arenad/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        arenad dropsim  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m   dropped-weapon janitor soak harness     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Harness logic ─────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/dropsim.toml"
	if p := os.Getenv("ARENAD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Optional eviction audit database
	var (
		db           *persist.DB
		evictionRepo *persist.EvictionLogRepo
	)
	if cfg.Database.Enabled {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err = persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		evictionRepo = persist.NewEvictionLogRepo(db)
	}

	// 4. Load data tables
	printSection("data")

	weaponTable, err := data.LoadWeaponTable(cfg.Data.WeaponTable)
	if err != nil {
		return fmt.Errorf("load weapon table: %w", err)
	}
	printStat("weapon templates", weaponTable.Count())

	// 5. Lua policy hooks
	var scripts *scripting.Engine
	if cfg.Scripting.Dir != "" {
		scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer scripts.Close()
		printOK("lua scripts loaded")
	}
	fmt.Println()

	// 6. World, tracker, and event bus
	ecsWorld := ecs.NewWorld()
	worldState := world.NewState(ecsWorld)
	bus := event.NewBus()

	clock := world.NewClock()
	tracker := world.NewTracker(
		cfg.Cleanup.MaxDropped,
		cfg.Cleanup.LifetimeSeconds,
		ecsWorld,
		worldState,
		log,
	)
	tracker.SetNowFunc(clock.Now)

	// 7. Systems
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sweepSys := system.NewSweepSystem(tracker, worldState, clock.Now, cfg.Cleanup.SweepInterval.Duration, scripts, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewDropHandlerSystem(bus, tracker, worldState, weaponTable, scripts, log))
	runner.Register(system.NewSpawnSystem(worldState, bus, weaponTable, cfg.Simulation, rng, log))
	runner.Register(sweepSys)
	runner.Register(system.NewCleanupSystem(ecsWorld))

	// 8. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate.Duration)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if cfg.Simulation.RunFor.Duration > 0 {
		deadline = time.After(cfg.Simulation.RunFor.Duration)
	}

	printSection("ready")
	printReady(fmt.Sprintf("simulation loop started (tick: %s)", cfg.Simulation.TickRate.Duration))
	printReady(fmt.Sprintf("tracking up to %d dropped weapons, lifetime %.0fs",
		cfg.Cleanup.MaxDropped, cfg.Cleanup.LifetimeSeconds))
	fmt.Println()

	flushCounter := 0
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate.Duration)

			// Periodic audit flush
			flushCounter++
			if flushCounter >= cfg.Database.FlushTicks {
				flushCounter = 0
				flushAudit(evictionRepo, sweepSys, log)
			}
		case <-deadline:
			log.Info("run duration reached")
			shutdown(tracker, sweepSys, evictionRepo, log)
			return nil
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdown(tracker, sweepSys, evictionRepo, log)
			return nil
		}
	}
}

// flushAudit writes buffered eviction records to the log table. Records
// are dropped on failure — auditing never stalls the loop.
func flushAudit(repo *persist.EvictionLogRepo, sweepSys *system.SweepSystem, log *zap.Logger) {
	pending := sweepSys.DrainPending()
	if repo == nil || len(pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.InsertBatch(ctx, pending); err != nil {
		log.Warn("eviction audit flush failed", zap.Error(err), zap.Int("records", len(pending)))
	}
}

// shutdown clears the tracker without destruction (teardown must not race
// the simulation's own cleanup) and flushes any remaining audit records.
func shutdown(tracker *world.Tracker, sweepSys *system.SweepSystem, repo *persist.EvictionLogRepo, log *zap.Logger) {
	tracker.Reset()
	flushAudit(repo, sweepSys, log)

	stats := tracker.Stats()
	log.Info("janitor totals",
		zap.Uint64("inserted", stats.Inserted),
		zap.Uint64("removed", stats.Removed),
		zap.Uint64("capacity_evictions", stats.CapacityEvictions),
		zap.Uint64("age_evictions", stats.AgeEvictions),
		zap.Uint64("stale_drops", stats.StaleDrops),
	)
	log.Info("dropsim stopped")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
