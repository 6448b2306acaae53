package http

import (
	stdhttp "net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/uploads"
)

// Files bundles upload storage with its deletion scheduler.
type Files struct {
	Storage   *uploads.Storage
	Scheduler *uploads.Scheduler
}

// NewServer builds the HTTP server with WebSocket, admin and upload routes.
func NewServer(hub *core.Hub, files Files, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler)

	api := router.Group("/")
	api.Use(LoggerMiddleware(logger))

	adminHandlers := NewAdminHandlers(hub, logger)
	api.POST("/verify-admin", adminHandlers.Verify)

	uploadHandlers := NewUploadHandlers(hub, files.Storage, files.Scheduler, logger)
	// Leave room for the multipart envelope around the file itself.
	api.POST("/upload", BodyLimitMiddleware(cfg.MaxUploadBytes+64<<10), uploadHandlers.Upload)
	api.Static(uploads.PublicPrefix, files.Storage.Dir())

	if info, err := os.Stat(cfg.PublicDir); err == nil && info.IsDir() {
		router.NoRoute(gin.WrapH(stdhttp.FileServer(stdhttp.Dir(cfg.PublicDir))))
	}

	// gin's response writer cannot be hijacked, so /ws is served outside the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg.MaxFramesPerMinute, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "%s", "ok")
}

