package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/cache"
    "github.com/gnm-events/backend/internal/config"
    "github.com/gnm-events/backend/internal/database"
    "github.com/gnm-events/backend/internal/handler"
    "github.com/gnm-events/backend/internal/mailer"
    "github.com/gnm-events/backend/internal/middleware"
    "github.com/gnm-events/backend/internal/oauth"
    "github.com/gnm-events/backend/internal/queue"
    "github.com/gnm-events/backend/internal/repository"
    "github.com/gnm-events/backend/internal/router"
    "github.com/gnm-events/backend/internal/service"
    "github.com/gnm-events/backend/internal/session"
    "github.com/gnm-events/backend/internal/token"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable: rate limiting disabled, replay cache in-process")
    }

    users := repository.NewUserRepo(db)
    contacts := repository.NewContactRepo(db)
    bookings := repository.NewBookingRepo(db)

    tokens := token.NewService(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
    sessions := session.NewManager(cfg.CookieSecure, tokens.AccessTTL(), tokens.RefreshTTL())
    resetGen := token.NewResetGenerator(cfg.JWTSecret)
    mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
    publisher := service.NewAMQPPublisher(service.BrokerURL())

    authH := handler.NewAuthHandler(cfg, users, tokens, sessions)
    profileH := handler.NewProfileHandler(users)
    resetH := handler.NewResetHandler(cfg, users, resetGen, mail)
    oauthH := handler.NewOAuthHandler(cfg, users, tokens, sessions,
        cache.NewReplayStore(rdb), oauth.NewClient(cfg))
    contactH := handler.NewContactHandler(contacts, publisher)
    bookingH := handler.NewBookingHandler(bookings, publisher)

    cookieAuth := middleware.CookieAuth(tokens, sessions)
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, profileH, resetH, cookieAuth, limiter)
    router.RegisterOAuth(e, oauthH)
    router.RegisterPublic(e, contactH, bookingH)
    router.RegisterAdmin(e, contactH, bookingH, cookieAuth, users)

    go queue.StartNotificationConsumer(service.BrokerURL(), mail, cfg.OrgEmail)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
