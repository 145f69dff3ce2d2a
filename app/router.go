// Package app contains all endpoints available
package app

import (
	"net/http"
	"time"

	"spacetwo/asset-api/app/collection"
	"spacetwo/asset-api/app/community"
	"spacetwo/asset-api/app/file"
	"spacetwo/asset-api/app/project"
	"spacetwo/asset-api/app/resolve"
	"spacetwo/asset-api/app/root"
	"spacetwo/asset-api/app/upload"
	"spacetwo/asset-api/app/user"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const jsonBodyLimit = 1 << 20

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
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
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	// Responses of public endpoints only, keyed by URI
	store := persist.NewMemoryStore(time.Minute)
	cacheFor := func(sec int) gin.HandlerFunc {
		return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
	}

	auth := middleware.NewAuthMiddleware(d.Verifier)
	jsonLimit := middleware.BodySizeLimiter(jsonBodyLimit)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: viper.GetInt("security.rate_limit"),
		CleanupInterval:   time.Minute,
		TTL:               3 * time.Minute,
	})

	if viper.GetBool("metrics.enabled") {
		// GET /metrics			-> Prometheus scrape endpoint
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if viper.GetBool("debug.pprof") {
		// GET /debug/pprof/*		-> Runtime profiles
		pprof.Register(router)
	}

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a bearer token
		m.GET("/validate", auth, root.Validate)

		// GET /api/community		-> Public feed of live collections
		m.GET("/community", cacheFor(15), func(c *gin.Context) { community.Feed(c, d) })

		// GET /api/resolve/:username/:project/*collection	-> Maps URL slugs to records
		m.GET("/resolve/:username/:project/*collection", cacheFor(30), func(c *gin.Context) { resolve.Resolve(c, d) })
	}

	up := m.Group("/upload", auth)
	{
		// POST /api/upload		-> Negotiates a signed upload URL
		up.POST("", jsonLimit, func(c *gin.Context) { upload.Begin(c, d) })

		// POST /api/upload/complete	-> Records an upload after the client stored it
		up.POST("/complete", jsonLimit, func(c *gin.Context) { upload.Complete(c, d) })

		// POST /api/upload/direct	-> Stores and records a multipart upload
		up.POST("/direct",
			middleware.BodySizeLimiter(viper.GetInt64("upload.max_size")+jsonBodyLimit),
			func(c *gin.Context) { upload.Direct(c, d) },
		)
	}

	p := m.Group("/projects", auth)
	{
		// GET /api/projects		-> Lists projects, or one with ?id=
		p.GET("", func(c *gin.Context) { project.Fetch(c, d) })

		// POST /api/projects		-> Creates a project
		p.POST("", jsonLimit, func(c *gin.Context) { project.Create(c, d) })

		// PUT /api/projects		-> Updates a project
		p.PUT("", jsonLimit, func(c *gin.Context) { project.Update(c, d) })

		// DELETE /api/projects?id=	-> Soft deletes a project
		p.DELETE("", func(c *gin.Context) { project.Delete(c, d) })
	}

	col := m.Group("/collections", auth)
	{
		// GET /api/collections		-> ?id=, ?project_id= or ?project_id=&name=
		col.GET("", func(c *gin.Context) { collection.Fetch(c, d) })

		// POST /api/collections	-> Creates a collection
		col.POST("", jsonLimit, func(c *gin.Context) { collection.Create(c, d) })

		// DELETE /api/collections?id=	-> Soft deletes a collection
		col.DELETE("", func(c *gin.Context) { collection.Delete(c, d) })
	}

	ff := m.Group("/files", auth)
	{
		// GET /api/files/:id/owns	-> Checks if a user owns a file
		ff.GET("/:id/owns", func(c *gin.Context) { file.FileOwns(c, d) })

		// GET /api/files/:id		-> Returns a file by it's ID if the user owns it
		ff.GET("/:id", func(c *gin.Context) { file.FileFetch(c, d) })

		// DELETE /api/files/:id	-> Soft deletes a file owned by a user
		ff.DELETE("/:id", func(c *gin.Context) { file.FileDelete(c, d) })
	}

	u := m.Group("/users")
	{
		// POST /api/users		-> Creates or updates the caller's profile
		u.POST("", auth, jsonLimit, func(c *gin.Context) { user.UserSave(c, d) })

		// DELETE /api/users		-> Soft deletes the caller's profile
		u.DELETE("", auth, func(c *gin.Context) { user.UserDelete(c, d) })

		// GET /api/users/:username	-> Public profile
		u.GET("/:username", cacheFor(60), func(c *gin.Context) { user.UserFetch(c, d) })
	}

	// The in-memory store plays the blob service itself, signed URLs point here
	if mem, ok := d.Blobs.(*blob.Memory); ok {
		// PUT|GET /api/blob/:bucket/*key	-> Signed transfers
		router.Any("/api/blob/*path", gin.WrapH(http.StripPrefix("/api/blob", mem)))
	}

	return router
}
