package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insight-agent/config"
	"insight-agent/document"
	"insight-agent/engine"
	"insight-agent/web/handlers"
	"insight-agent/web/middleware"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	config *config.Config
}

func NewServer(eng *engine.Engine, parser *document.Parser, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Session())
	router.Use(middleware.RateLimiter(cfg, logger))

	server := &Server{
		router: router,
		logger: logger,
		config: cfg,
	}

	chatHandler := handlers.NewChatHandler(eng, logger)
	documentHandler := handlers.NewDocumentHandler(parser, cfg, logger)
	chartHandler := handlers.NewChartHandler(logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", chatHandler.SendMessage)
		api.POST("/documents", documentHandler.Upload)
		api.POST("/charts/config", chartHandler.GenerateConfig)
		api.GET("/charts/sample/:type", chartHandler.Sample)
	}

	return server
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
