package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/config"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/database"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/debt"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/jobs"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/logging"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/notify"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/recurrence"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/router"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/scheduler"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Log)

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store := ledger.NewStore(db)
	engine := recurrence.NewEngine(store, logger)
	settler := debt.NewSettler(store)

	if cfg.Scheduler.Enabled {
		runner := jobs.NewRunner(engine, store, notify.NewLogSink(logger), logger, cfg)
		sched, err := scheduler.New(runner, cfg.Scheduler, logger)
		if err != nil {
			log.Fatalf("init scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// setup router
	r := router.SetupRouter(cfg, store, engine, settler, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Infof("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
