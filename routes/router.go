package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/carlos18bp/editor-publisher-feature/config"
	"github.com/carlos18bp/editor-publisher-feature/controllers"
	"github.com/carlos18bp/editor-publisher-feature/repo"
	"github.com/carlos18bp/editor-publisher-feature/service"
	"github.com/carlos18bp/editor-publisher-feature/storage"
	"github.com/carlos18bp/editor-publisher-feature/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Serve stored media so the image URLs written into blog content resolve
	r.Static(strings.TrimSuffix(cfg.MediaURLPrefix, "/"), cfg.MediaRoot)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	imageStore := storage.NewImageStore(cfg.MediaRoot, cfg.MediaURLPrefix, cfg.SiteBaseURL, utils.Logger)
	extractor := storage.NewExtractor(imageStore, utils.Logger)
	blogService := service.NewBlogService(repo.NewBlogRepository(db), imageStore, extractor, utils.Logger)
	blogController := controllers.NewBlogController(blogService, imageStore)

	api := r.Group("/api")
	api.GET("/blogs", blogController.ListBlogs)
	api.POST("/blogs", blogController.CreateBlog)
	api.PUT("/blogs/:id", blogController.UpdateBlog)
	api.DELETE("/blogs/:id", blogController.DeleteBlog)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
