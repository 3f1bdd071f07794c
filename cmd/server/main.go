package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // .env loading for local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/visually-speaking/matchmaking/internal/config"   // Internal config loader
    "github.com/visually-speaking/matchmaking/internal/database" // MySQL pool constructor
    "github.com/visually-speaking/matchmaking/internal/engine"   // Pairing engine
    "github.com/visually-speaking/matchmaking/internal/handler"  // HTTP handlers
    "github.com/visually-speaking/matchmaking/internal/middleware"
    "github.com/visually-speaking/matchmaking/internal/provider" // Daily room provisioning
    "github.com/visually-speaking/matchmaking/internal/queue"    // match.created consumer
    "github.com/visually-speaking/matchmaking/internal/repository"
    "github.com/visually-speaking/matchmaking/internal/router" // Internal router setup
)

func main() {
    // Load .env when present; real deployments set env vars directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }

    queueRepo := repository.NewQueueRepo(db)
    roomRepo := repository.NewRoomRepo(db)
    matchRepo := repository.NewMatchRecordRepo(db)
    ticketRepo := repository.NewTicketRepo(db)

    pairer := engine.NewPairer(queueRepo, roomRepo, matchRepo)
    daily := provider.NewDailyClient(cfg.DailyBaseURL, cfg.DailyAPIKey, cfg.DailyTimeout)

    mm := handler.NewMatchmakingHandler(queueRepo, roomRepo, ticketRepo, pairer, daily)
    admin := handler.NewAdminMatchHandler(mm, matchRepo)

    // Redis is optional: without it rate limiting and stats caching
    // are disabled and everything else keeps working.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and response cache disabled")
    }
    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    // Consume match.created events in the background; the consumer
    // reconnects on broker failure and never stops the server.
    go func() {
        if err := queue.StartMatchConsumer(); err != nil {
            log.Printf("match-consumer: %v", err)
        }
    }()

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterMatchmaking(e, mm, cfg.JWTSecret, rateLimit)
    router.RegisterAdmin(e, admin, cfg.JWTSecret, cache)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
