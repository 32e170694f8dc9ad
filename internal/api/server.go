package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/orm"
)

var Provider = wire.NewSet(
	NewScheduleHandler,
	NewIntentHandler,
	NewExecutionHandler,
	NewCallbackHandler,
	NewReviewHandler,
	NewServer,
)

type Server struct {
	router   *gin.Engine
	storage  *orm.Storage
	provider adapter.Adapter
}

func NewServer(
	storage *orm.Storage,
	provider adapter.Adapter,
	scheduleHandler *ScheduleHandler,
	intentHandler *IntentHandler,
	executionHandler *ExecutionHandler,
	callbackHandler *CallbackHandler,
	reviewHandler *ReviewHandler,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{storage: storage, provider: provider}
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(ErrorHandlingMiddleware(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	s.router.Use(cors.New(corsConfig))

	v1 := s.router.Group("/api/v1")
	{
		scheduleHandler.Bind(v1)
		intentHandler.Bind(v1)
		executionHandler.Bind(v1)
		callbackHandler.Bind(v1)
		reviewHandler.Bind(v1)
		v1.GET("/health", s.Health)
	}

	return s
}

func (s *Server) Health(c *gin.Context) {
	if err := s.storage.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
			"time":   time.Now(),
		})
		return
	}

	providerHealth := s.provider.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"provider": gin.H{"state": string(providerHealth.State), "message": providerHealth.Message},
		"time":     time.Now(),
	})
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
