package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/healthrisk/internal/report"
	"github.com/Skufu/healthrisk/internal/risk"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Engine *risk.Engine
	// Renderer may be nil, in which case reports are not offered.
	Renderer   report.Renderer
	DB         HealthChecker
	Logger     *zap.Logger
	StaticRoot string
	Now        func() time.Time
}

func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	h := &handler{
		engine:   opts.Engine,
		renderer: opts.Renderer,
		logger:   logger,
		now:      now,
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}),
	)

	if opts.StaticRoot != "" && fileExists(filepath.Join(opts.StaticRoot, "index.html")) {
		router.Static("/static", opts.StaticRoot)
		router.StaticFile("/", filepath.Join(opts.StaticRoot, "index.html"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		reports := "enabled"
		if h.renderer == nil {
			reports = "disabled"
		}
		if opts.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled", "models": "loaded", "reports": reports})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := opts.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "degraded",
				"db":      fmt.Sprintf("unhealthy: %v", err),
				"models":  "loaded",
				"reports": reports,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok", "models": "loaded", "reports": reports})
	})

	newDiabetes := func() assessmentRequest { return &DiabetesRequest{} }
	newHeart := func() assessmentRequest { return &HeartRequest{} }

	api := router.Group("/api/v1")
	{
		api.POST("/diabetes/predict", h.predict(newDiabetes))
		api.POST("/diabetes/report", h.downloadReport(newDiabetes))
		api.POST("/heart/predict", h.predict(newHeart))
		api.POST("/heart/report", h.downloadReport(newHeart))
	}

	return router
}

// DetectStaticRoot looks for web/index.html in the working directory and
// its two parents.
func DetectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		web := filepath.Join(dir, "web")
		if fileExists(filepath.Join(web, "index.html")) {
			return web
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
