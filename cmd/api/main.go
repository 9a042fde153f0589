package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "github.com/vasujain275/shelfwise/internal/adapter/http"
	mw "github.com/vasujain275/shelfwise/internal/adapter/middleware"
	"github.com/vasujain275/shelfwise/internal/adapter/repository/mysql"
	"github.com/vasujain275/shelfwise/internal/config"
	"github.com/vasujain275/shelfwise/internal/domain/book"
	"github.com/vasujain275/shelfwise/internal/domain/loan"
	"github.com/vasujain275/shelfwise/internal/domain/user"
	"github.com/vasujain275/shelfwise/internal/infrastructure/cache"
	"github.com/vasujain275/shelfwise/internal/infrastructure/db"
	"github.com/vasujain275/shelfwise/internal/usecase/ledger"
	"github.com/vasujain275/shelfwise/internal/usecase/overdue"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gdb.AutoMigrate(&book.Book{}, &user.User{}, &loan.Loan{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	loans := mysql.NewLoanRepository(gdb)
	books := mysql.NewBookRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	guow := mysql.NewGormUoW(gdb)

	ledgerUC := ledger.NewUsecase(loans, books, users, guow)
	overdueUC := overdue.NewUsecase(guow)

	// startup + periodic sweep; a failed run logs and waits for the next tick
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go overdue.NewScheduler(overdueUC, cfg.SweepInterval).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	h := httpadp.NewHandler()
	e.GET("/health", h.Health)
	idem := mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
	httpadp.NewLedgerHandler(ledgerUC, overdueUC).Register(e, idem)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
