package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"capychat/config"
	"capychat/database"
	"capychat/faq"
	"capychat/web/handlers"
	"capychat/web/middleware"
	"capychat/web/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	store     *database.PostgresStore
	generator *faq.Generator
	answerer  *faq.Answerer
	limiter   *middleware.ClientRateLimiter
	logger    *zap.Logger
	config    *config.Config
}

func NewServer(store *database.PostgresStore, generator *faq.Generator, answerer *faq.Answerer, logger *zap.Logger, cfg *config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	limiter, err := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: cfg.RateLimitMessagesPerMin,
		BurstSize:         cfg.RateLimitBurstSize,
		CacheSize:         cfg.RateLimitCacheSize,
	}, logger)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())

	server := &Server{
		router:    router,
		store:     store,
		generator: generator,
		answerer:  answerer,
		limiter:   limiter,
		logger:    logger,
		config:    cfg,
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	transcripts := services.NewTranscriptService(s.logger, s.config.MaxTranscriptChars)

	faqHandler := handlers.NewFAQHandler(s.store, s.generator, transcripts, s.config.UploadMaxBytes, s.logger)
	categoryHandler := handlers.NewCategoryHandler(s.store, s.logger)
	settingsHandler := handlers.NewSettingsHandler(s.store, s.logger)
	chatbotHandler := handlers.NewChatbotHandler(s.store, s.answerer, s.logger)
	docsHandler := handlers.NewDocsHandler(s.store, s.logger)

	tenant := middleware.TenantMiddleware(s.store, s.config.DefaultTenantKey)

	s.router.GET("/docs", tenant, docsHandler.Page)

	api := s.router.Group("/api", tenant)
	{
		api.POST("/faq/generate-from-logs", faqHandler.GenerateFromLogs)
		api.POST("/faq/generate-from-file", faqHandler.GenerateFromFile)
		api.GET("/faq/list", faqHandler.List)
		api.POST("/faq/create", faqHandler.Create)
		api.POST("/faq/delete-bulk", faqHandler.DeleteBulk)
		api.PUT("/faq/:id", faqHandler.Update)
		api.DELETE("/faq/:id", faqHandler.Delete)

		api.GET("/category/list", categoryHandler.List)
		api.POST("/category/create", categoryHandler.Create)
		api.PUT("/category/:id", categoryHandler.Update)
		api.DELETE("/category/:id", categoryHandler.Delete)

		api.GET("/config/chat", settingsHandler.GetChat)
		api.PUT("/config/chat", settingsHandler.UpdateChat)

		api.POST("/chatbot", middleware.RateLimitMiddleware(s.limiter), chatbotHandler.Message)
	}
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.DB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rate_limited_clients": s.limiter.Tracked()})
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server failed to start", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
