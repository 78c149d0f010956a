package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/appregistry/internal/config"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/handler"
	"github.com/iliyamo/appregistry/internal/middleware"
	"github.com/iliyamo/appregistry/internal/queue"
	"github.com/iliyamo/appregistry/internal/repository"
	"github.com/iliyamo/appregistry/internal/router"
	"github.com/iliyamo/appregistry/internal/service"
	"github.com/iliyamo/appregistry/internal/utils"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db: %v", err)
	}

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	if created, err := users.EnsureAdmin(ctx, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	} else if created {
		log.Printf("seeded admin user %q", repository.AdminUsername)
	}

	auditCfg := config.LoadAuditConfig()
	pub := service.NewPublisher(auditCfg)
	if auditCfg.Enabled {
		go func() {
			if err := queue.StartAuditConsumer(ctx, auditCfg); err != nil && ctx.Err() == nil {
				log.Printf("audit-consumer: %v", err)
			}
		}()
	}

	rlCfg := config.LoadRateLimitConfig()
	var rdb *redis.Client
	if rlCfg.Enabled {
		if rdb = config.NewRedisClient(config.LoadRedisConfig()); rdb == nil {
			log.Printf("ratelimit: redis unavailable, limiter disabled")
		} else {
			defer rdb.Close()
		}
	}

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	e := router.New(cfg.Development())
	configureLogger(e, cfg)
	e.Use(requestLogger())

	router.RegisterRoutes(e, router.Handlers{
		Users:        handler.NewUserHandler(users, pub),
		Roles:        handler.NewRoleHandler(repository.NewRoleRepo(db), pub),
		Applications: handler.NewApplicationHandler(repository.NewApplicationRepo(db), pub),
		Auth:         handler.NewAuthHandler(users, tokens, cfg.CookieSecure),
	}, tokens, middleware.NewTokenBucket(rlCfg, rdb))

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, db.Dialect().Name())
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

// configureLogger sets the echo logger level and sends it to LOG_FILE when
// one is configured.
func configureLogger(e *echo.Echo, cfg config.Config) {
	e.Logger.SetLevel(parseLevel(cfg.LogLevel))
	if cfg.LogFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		log.Fatalf("log: %v", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	e.Logger.SetOutput(f)
}

func parseLevel(s string) glog.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	}
	return glog.INFO
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := glog.JSON{
				"id":         v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"remote_ip":  v.RemoteIP,
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
			}
			c.Logger().Infoj(fields)
			return nil
		},
	})
}
