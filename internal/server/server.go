package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/circuitbreaker"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/config"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/handler"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/middleware"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/ratelimit"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/relay"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/repository"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/service"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the process-wide resources the server is built from.
// Postgres, Redis and MemoryLimiter may be nil.
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Postgres      *storage.Postgres
	Redis         *storage.RedisClient
	Limiter       ratelimit.Limiter
	MemoryLimiter *ratelimit.MemoryLimiter
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *zap.Logger
	limiter    ratelimit.Limiter
	relays     map[string]*relay.Client
	httpServer *http.Server

	authService      *service.AuthService
	chatHandler      *handler.ChatHandler
	planHandler      *handler.PlanHandler
	checkoutHandler  *handler.CheckoutHandler
	dashboardHandler *handler.DashboardHandler
	systemHandler    *handler.SystemHandler
}

func New(deps Deps) *Server {
	cfg := deps.Config
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:  gin.New(),
		config:  cfg,
		logger:  logger,
		limiter: deps.Limiter,
		relays:  make(map[string]*relay.Client),
	}

	s.initializeRelays()
	s.initializeServices(deps)
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) initializeRelays() {
	breaker := circuitbreaker.Config{
		MaxFailures:     5,
		Timeout:         30 * time.Second,
		HalfOpenSuccess: 1,
	}

	chatHeaders := map[string]string{}
	if s.config.Chat.WebhookToken != "" {
		chatHeaders["Authorization"] = "Bearer " + s.config.Chat.WebhookToken
	}
	s.relays["chat"] = relay.New(relay.Config{
		Name:           "chat",
		BaseURL:        s.config.Chat.WebhookURL,
		Headers:        chatHeaders,
		Timeout:        s.config.Chat.Timeout,
		CircuitBreaker: breaker,
	}, s.logger)

	checkoutHeaders := map[string]string{}
	if s.config.Checkout.APIKey != "" {
		checkoutHeaders["Authorization"] = "Bearer " + s.config.Checkout.APIKey
	}
	s.relays["checkout"] = relay.New(relay.Config{
		Name:           "checkout",
		BaseURL:        s.config.Checkout.APIURL,
		Headers:        checkoutHeaders,
		Timeout:        s.config.Checkout.Timeout,
		CircuitBreaker: breaker,
	}, s.logger)

	for name, r := range s.relays {
		if !r.Configured() {
			s.logger.Warn("relay target not configured, endpoint will return 503", zap.String("relay", name))
		}
	}
}

func (s *Server) initializeServices(deps Deps) {
	// Interfaces stay nil without a database so services can report it
	var (
		plans    service.PlanStore
		subs     service.SubscriptionStore
		chatLog  service.ChatLogStore
		activity service.ChatActivityStore
		cache    service.Cache
		checks   = map[string]handler.Pinger{}
	)
	if deps.Postgres != nil {
		chatRepo := repository.NewChatMessageRepository(deps.Postgres)
		subRepo := repository.NewSubscriptionRepository(deps.Postgres)

		plans = repository.NewPlanRepository(deps.Postgres)
		subs = subRepo
		chatLog = chatRepo
		activity = chatRepo
		checks["database"] = deps.Postgres
	}
	if deps.Redis != nil {
		cache = deps.Redis
		checks["redis"] = deps.Redis
	}

	s.authService = service.NewAuthService(s.config.Auth.JWTSecret, s.config.Auth.Issuer)

	planService := service.NewPlanService(plans, cache, s.config.Server.PlanCacheTTL, s.logger)
	chatService := service.NewChatService(s.relays["chat"], chatLog, s.logger)
	checkoutService := service.NewCheckoutService(planService, subs, s.relays["checkout"], service.CheckoutConfig{
		SuccessURL: s.config.Checkout.SuccessURL,
		CancelURL:  s.config.Checkout.CancelURL,
	}, s.logger)
	var dashboardSubs service.SubscriptionLookup
	if subs != nil {
		dashboardSubs = subs
	}
	dashboardService := service.NewDashboardService(dashboardSubs, activity)

	s.chatHandler = handler.NewChatHandler(chatService)
	s.planHandler = handler.NewPlanHandler(planService)
	s.checkoutHandler = handler.NewCheckoutHandler(checkoutService)
	s.dashboardHandler = handler.NewDashboardHandler(dashboardService)
	s.systemHandler = handler.NewSystemHandler(s.relays, checks, deps.MemoryLimiter)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.Server.CORSOrigins))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.systemHandler.Health)

	public := s.router.Group("/api")
	{
		public.GET("/plans", s.planHandler.List)
		public.GET("/plans/:id", s.planHandler.Get)
	}

	api := s.router.Group("/api")
	api.Use(middleware.RequireAuth(s.authService))
	{
		api.GET("/me", s.dashboardHandler.Me)
		api.GET("/dashboard", s.dashboardHandler.Summary)
		api.POST("/chat",
			middleware.RateLimit(s.limiter, "chat", s.config.RateLimit.ChatPolicy(), s.logger),
			s.chatHandler.Send,
		)
		api.POST("/checkout",
			middleware.RateLimit(s.limiter, "checkout", s.config.RateLimit.CheckoutPolicy(), s.logger),
			s.checkoutHandler.Create,
		)
	}

	admin := s.router.Group("/admin")
	admin.Use(middleware.RequireAuth(s.authService), middleware.RequireRole("admin"))
	{
		admin.GET("/breakers", s.systemHandler.CircuitBreakerStatus)
		admin.POST("/breakers/:name/reset", s.systemHandler.ResetCircuitBreaker)
	}
}

// Run serves until Shutdown is called; it then returns http.ErrServerClosed.
func (s *Server) Run() error {
	s.logger.Info("starting portal",
		zap.String("addr", s.httpServer.Addr),
		zap.String("environment", s.config.Server.Environment),
	)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
