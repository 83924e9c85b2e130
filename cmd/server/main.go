package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/cache"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/config"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/database"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/handler"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/middleware"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/queue"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/repository"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/router"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/sweeper"
)

func main() {
	// Load .env if present; in containers the variables come from the
	// environment directly and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	claimCache := cache.NewClaimCache(rdb, cfg.CouponWindow())

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	participants := repository.NewParticipantRepo(db)
	exhibitors := repository.NewExhibitorRepo(db)
	slots := repository.NewMealSlotRepo(db)
	coupons := repository.NewCouponRepo(db)
	allocations := repository.NewAllocationRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, participants, exhibitors, slots, coupons)
	participantH := handler.NewParticipantHandler(participants, slots, coupons, claimCache, cfg.CouponWindow())
	exhibitorH := handler.NewExhibitorHandler(exhibitors, slots, allocations)
	adminH := handler.NewAdminHandler(slots, participants, exhibitors, coupons, allocations, claimCache)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterParticipant(e, participantH, cfg.JWTSecret, limiter)
	router.RegisterExhibitor(e, exhibitorH, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background expiry sweep keeps the database converged for holders
	// who never reopen their dashboard after a claim lapses.
	go sweeper.New(coupons, claimCache, cfg.SweepInterval()).Run(ctx)

	// Audit consumer drains coupon.audit into the audit log.  It
	// reconnects on broker failures and never takes the API down.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
