// Package app wires the HTTP routes to their handlers
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"videoshare/video-api/app/comment"
	"videoshare/video-api/app/rating"
	"videoshare/video-api/app/root"
	"videoshare/video-api/app/user"
	"videoshare/video-api/app/video"
	"videoshare/video-api/db"
	"videoshare/video-api/internal"
	"videoshare/video-api/internal/auth"
	"videoshare/video-api/internal/model"
	"videoshare/video-api/internal/service"
	"videoshare/video-api/internal/storage"
	"videoshare/video-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// NewRouter connects to every external collaborator and returns the
// configured engine. The returned Deps must be closed on shutdown.
func NewRouter(ctx context.Context) (*gin.Engine, *internal.Deps, error) {
	makeLogger()

	store, err := db.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metadata store, %w", err)
	}

	objects, err := storage.New(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to initialize object storage, %w", err)
	}

	identity, err := auth.New(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to initialize identity provider, %w", err)
	}

	d := &internal.Deps{
		DB:       store,
		Storage:  objects,
		Identity: identity,
		Pipeline: service.NewPipeline(service.NewFFmpegFromConfig(), objects, store),
	}

	cacheStore, err := newCacheStore()
	if err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("failed to initialize response cache, %w", err)
	}

	zap.L().Info("Dependencies initialized",
		zap.String("database", viper.GetString("database.driver")),
		zap.String("storage", viper.GetString("storage.type")),
		zap.String("auth", viper.GetString("auth.provider")))

	return newEngine(ctx, d, cacheStore), d, nil
}

func newEngine(ctx context.Context, d *internal.Deps, cacheStore persist.CacheStore) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(corsConfig(viper.GetString("host.cors"))),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.NewMetricsMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	authenticated := middleware.NewAuthMiddleware(d.Identity)
	creator := middleware.NewRoleMiddleware(model.RoleCreator)
	turnstile := middleware.NewTurnstileMiddleware()
	cacheFor := cacheWith(cacheStore)
	ttl := viper.GetInt("cache.ttl")

	// GET / 				-> Liveness text
	router.GET("/", root.Liveness)

	// GET /metrics			-> Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := d.Storage.(*storage.LocalStore); ok {
		// GET /files/*			-> Objects kept by the local storage backend
		router.Static("/files", local.BasePath())
	}

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
	}

	v := m.Group("/videos")
	{
		// POST /api/videos/upload		-> Transcodes, stores and publishes a video. Creators only
		v.POST("/upload",
			authenticated,
			creator,
			middleware.BodySizeLimiter(viper.GetInt64("upload.max_size")+1<<20),
			func(c *gin.Context) { video.VideoUpload(c, d) },
		)

		// GET /api/videos			-> Lists videos, supports search, sort, creator, limit and skip
		v.GET("", cacheFor(ttl), func(c *gin.Context) { video.VideoList(c, d) })

		// GET /api/videos/:id			-> Returns a single video
		v.GET("/:id", cacheFor(ttl), func(c *gin.Context) { video.VideoFetch(c, d) })

		// GET /api/videos/:id/comments		-> Lists comments, newest first
		v.GET("/:id/comments", func(c *gin.Context) { comment.CommentList(c, d) })

		// POST /api/videos/:id/comments	-> Adds a comment
		v.POST("/:id/comments", authenticated, middleware.BodySizeLimiter(64<<10), func(c *gin.Context) { comment.CommentCreate(c, d) })

		// GET /api/videos/:id/ratings		-> Like and dislike counts
		v.GET("/:id/ratings", func(c *gin.Context) { rating.Summary(c, d) })
		v.GET("/:id/rating-summary", func(c *gin.Context) { rating.Summary(c, d) })

		// POST /api/videos/:id/rate		-> Sets, replaces or clears the caller's rating
		v.POST("/:id/rate", authenticated, middleware.BodySizeLimiter(4<<10), func(c *gin.Context) { rating.Rate(c, d) })
		v.POST("/:id/like", authenticated, func(c *gin.Context) { rating.Like(c, d) })
		v.POST("/:id/dislike", authenticated, func(c *gin.Context) { rating.Dislike(c, d) })
	}

	u := m.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/users		-> Lists all profiles
		u.GET("", func(c *gin.Context) { user.UserList(c, d) })

		// POST /api/users 		-> Creates or updates a profile
		u.POST("", turnstile, func(c *gin.Context) { user.UserUpsert(c, d) })

		// POST /api/users/promote	-> Grants the caller the creator role
		u.POST("/promote", authenticated, func(c *gin.Context) { user.UserPromote(c, d) })
	}

	return router
}

func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			return cfg
		}
		if o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}

	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowCredentials = true
	return cfg
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if level, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func newCacheStore() (persist.CacheStore, error) {
	url := viper.GetString("cache.redis_url")
	if url == "" {
		return persist.NewMemoryStore(time.Minute), nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis, %w", err)
	}

	return persist.NewRedisStore(client), nil
}

func cacheWith(store persist.CacheStore) func(sec int) gin.HandlerFunc {
	return func(sec int) gin.HandlerFunc {
		if sec <= 0 {
			return func(c *gin.Context) { c.Next() }
		}

		return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
	}
}
