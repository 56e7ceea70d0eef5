package app

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/db"
	"github.com/Gautamrajanand/crm-supabase-sub000/notify"
	"github.com/Gautamrajanand/crm-supabase-sub000/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Aliases so handlers read shorter.
type Ctx = gin.Context
type H = gin.H

// App aggregates the service dependencies.
type App struct {
	Router    *gin.Engine
	DB        *gorm.DB
	RDB       *redis.Client
	Config    Config
	Broadcast *notify.Broadcaster

	appSess *session.AppSessionStore
	streams *session.ActiveStreamStore
}

// Config comes from environment variables.
type Config struct {
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	SessionTTL     time.Duration
	BootstrapEmail string
	AppName        string
}

func (a *App) AppSessions() *session.AppSessionStore     { return a.appSess }
func (a *App) ActiveStreams() *session.ActiveStreamStore { return a.streams }

func MustNew() *App {
	cfg := loadConfig()

	dbConn := db.ConnectDB()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg,
		Broadcast: notify.NewBroadcaster(rdb),
		appSess:   session.NewAppSessionStore(rdb, cfg.SessionTTL),
		streams:   session.NewActiveStreamStore(rdb, cfg.SessionTTL),
	}
	return a
}

func (a *App) Close() {
	a.Broadcast.Close()
	_ = a.RDB.Close()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	ttlSec := get("SESSION_TTL_SECONDS", "86400")
	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(ttlSec + "s"); err == nil {
		ttl = d
	}
	return Config{
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      get("WEB_ORIGIN", "http://localhost:3000"),
		SessionTTL:     ttl,
		BootstrapEmail: strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_EMAIL"))),
		AppName:        get("APP_NAME", "Revenue Stream CRM"),
	}
}
