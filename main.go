package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/versegallery/versegallery/handlers"
	"github.com/versegallery/versegallery/internal/catalog"
	"github.com/versegallery/versegallery/internal/config"
	"github.com/versegallery/versegallery/internal/database"
	"github.com/versegallery/versegallery/internal/layer8"
	"github.com/versegallery/versegallery/internal/models"
	"github.com/versegallery/versegallery/internal/sessions"
	"github.com/versegallery/versegallery/internal/storage"
	"github.com/versegallery/versegallery/internal/tokens"
	"github.com/versegallery/versegallery/internal/users"
	"github.com/versegallery/versegallery/pkg/logger"
	"github.com/versegallery/versegallery/pkg/metrics"
	"github.com/versegallery/versegallery/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: layer8=%v mongo=%v redis=%v", cfg.Layer8.Enabled(), cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the blacklist and rate-limiter can use it when configured
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})

		if err := importedRedis.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(importedRedis)
			logger.Infof("Connected to Redis for session blacklist: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// User store: Mongo when configured, the in-memory mock datastore otherwise
	ctx := context.Background()
	var userRepo users.Repository
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts, falling back to memory store: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			userRepo = users.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("users"))
			logger.Infof("Using MongoDB for user storage")
		}
	}
	if userRepo == nil {
		mem := users.NewMemoryRepository()
		mem.Seed(fixtureUsers()...)
		userRepo = mem
		logger.Infof("Using in-memory user storage with demo fixtures")
	}
	userSvc := users.NewService(userRepo)

	issuer, err := tokens.NewIssuer(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize session issuer: %v", err)
	}

	// Profile picture storage: MinIO when configured, local uploads dir otherwise
	var profileStore storage.Storage
	if mc := storage.LoadMinIOConfig(); mc.Endpoint != "" {
		s, err := storage.NewMinIOStorage(mc)
		if err != nil {
			logger.Fatalf("failed to initialize MinIO storage: %v", err)
		}
		profileStore = s
		logger.Infof("Using MinIO for profile pictures (bucket=%s)", mc.Bucket)
	} else {
		s, err := storage.NewLocalStorage(cfg.Uploads.Dir)
		if err != nil {
			logger.Fatalf("failed to initialize local storage: %v", err)
		}
		profileStore = s
		// serve uploads statically like the original SPA backend
		r.Static("/uploads", cfg.Uploads.Dir)
	}

	// Layer8 handshake wiring
	var handshake *layer8.Handshake
	if cfg.Layer8.Enabled() {
		handshake = layer8.NewHandshake(layer8.NewClient(cfg.Layer8), userSvc)
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint returns 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["users"] = userRepo != nil
		if userRepo == nil {
			ready = false
		}

		// Layer8 readiness: configured implies a handshake must be wired
		if cfg.Layer8.Enabled() {
			deps["layer8"] = handshake != nil
			if handshake == nil {
				ready = false
			}
		} else {
			deps["layer8"] = true
		}

		// Redis readiness when used for the rate-limiter
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = importedRedis != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	// Route registration
	root := r.Group("/")
	handlers.NewAuthHandler(cfg, userSvc, issuer).Register(root)
	handlers.NewCatalogHandler(catalog.NewStore()).Register(r, cfg.Uploads.ImagesDir)
	handlers.NewProfileHandler(cfg, userSvc, profileStore).Register(root)
	if handshake != nil {
		handlers.NewLayer8Handler(handshake, issuer).Register(root)
	} else {
		logger.Warnf("Layer8 handshake not registered (provider not configured)")
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: layer8=%v mongo=%v redis=%v jwt_secret_set=%v", cfg.Layer8.Enabled(), cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")
	logger.Infof("Starting versegallery backend on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// fixtureUsers returns the demo accounts pre-loaded into the memory store.
func fixtureUsers() []*models.User {
	bio := "Test user with pre-filled metadata"
	return []*models.User{
		{
			Username: "tester",
			// bcrypt digest of "1234"
			PasswordHash: "$2b$10$vPCe/tNw/t2MHK/tGetY1exyvp4AhTC9w6mY5jyHHRAJrClfd1yYW",
			Metadata: &models.Metadata{
				Bio: &bio,
				Extra: map[string]interface{}{
					"joined":    "2023-01-01",
					"favorites": []string{"The Raven", "We Real Cool"},
				},
			},
		},
	}
}
