package main

import (
	"database/sql"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/config"
	"github.com/anthera/powerleave/internal/database"
	"github.com/anthera/powerleave/internal/handler"
	"github.com/anthera/powerleave/internal/middleware"
	"github.com/anthera/powerleave/internal/queue"
	"github.com/anthera/powerleave/internal/repository"
	"github.com/anthera/powerleave/internal/router"
	queuepublisher "github.com/anthera/powerleave/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	// The database is optional: without DB settings the service starts
	// in degraded mode where reads return empty collections and writes
	// fail with 503.
	var db *sql.DB
	if cfg.DatabaseConfigured() {
		var err error
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database connect failed: %v", err)
		}
		defer db.Close()
	} else {
		log.Printf("no database configured; starting in degraded mode")
	}

	repos := buildRepos(db)

	authH := handler.NewAuthHandler(cfg, repos.users, repos.tokens, repos.balances)
	leaveH := handler.NewLeaveHandler(repos.types, repos.balances, repos.requests)
	reviewH := handler.NewReviewHandler(repos.requests, repos.balances, repos.types, queuepublisher.PublishLeaveReviewed)
	statsH := handler.NewStatsHandler(repos.users, repos.requests, repos.balances)
	calH := handler.NewCalendarHandler(repos.requests, repos.closures)
	annH := handler.NewAnnouncementHandler(repos.announcements)
	closureH := handler.NewClosureHandler(repos.closures, repos.users, repos.requests, repos.balances, repos.types, repos.exceptions)
	msgH := handler.NewMessageHandler(repos.messages, repos.users)
	teamH := handler.NewTeamHandler(repos.users)
	settingsH := handler.NewSettingsHandler(repos.settings)

	e := echo.New()
	e.HideBanner = true

	// Redis backs the rate limiter and the response cache; a nil client
	// turns both into pass-throughs.  The rate limiter is global; the
	// cache only wraps the public routes, so per-user responses are
	// never stored.
	var cacheMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		cacheMW = append(cacheMW, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	router.RegisterRoutes(e, leaveH, annH, cacheMW...)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterUser(e, cfg.JWTSecret, leaveH, statsH, calH, msgH, closureH, settingsH)
	router.RegisterAdmin(e, cfg.JWTSecret, reviewH, leaveH, teamH, annH, closureH, settingsH)

	// Review notifications only make sense with a database to write
	// messages into.
	if repos.messages != nil {
		go func() {
			if err := queue.StartReviewConsumer(repos.messages); err != nil {
				log.Printf("review consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// repoSet groups the per-table repositories.  All fields stay nil in
// degraded mode.
type repoSet struct {
	users         *repository.UserRepo
	tokens        *repository.TokenRepo
	types         *repository.LeaveTypeRepo
	balances      *repository.LeaveBalanceRepo
	requests      *repository.LeaveRequestRepo
	announcements *repository.AnnouncementRepo
	closures      *repository.ClosureRepo
	exceptions    *repository.ClosureExceptionRepo
	messages      *repository.MessageRepo
	settings      *repository.SettingsRepo
}

func buildRepos(db *sql.DB) repoSet {
	if db == nil {
		return repoSet{}
	}
	return repoSet{
		users:         repository.NewUserRepo(db),
		tokens:        repository.NewTokenRepo(db),
		types:         repository.NewLeaveTypeRepo(db),
		balances:      repository.NewLeaveBalanceRepo(db),
		requests:      repository.NewLeaveRequestRepo(db),
		announcements: repository.NewAnnouncementRepo(db),
		closures:      repository.NewClosureRepo(db),
		exceptions:    repository.NewClosureExceptionRepo(db),
		messages:      repository.NewMessageRepo(db),
		settings:      repository.NewSettingsRepo(db),
	}
}
