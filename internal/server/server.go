package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/middleware"
	"anoa.com/welfaredesk/pkg/credential"
	"anoa.com/welfaredesk/pkg/logger"
	"anoa.com/welfaredesk/pkg/media"
	"anoa.com/welfaredesk/pkg/metrics"
	"anoa.com/welfaredesk/pkg/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	actionHttp "anoa.com/welfaredesk/internal/modules/action/delivery/http"
	actionRepo "anoa.com/welfaredesk/internal/modules/action/repository"
	actionService "anoa.com/welfaredesk/internal/modules/action/service"

	beneficiaryHttp "anoa.com/welfaredesk/internal/modules/beneficiary/delivery/http"
	beneficiaryRepo "anoa.com/welfaredesk/internal/modules/beneficiary/repository"
	beneficiaryService "anoa.com/welfaredesk/internal/modules/beneficiary/service"

	tokenHttp "anoa.com/welfaredesk/internal/modules/token/delivery/http"
	tokenRepo "anoa.com/welfaredesk/internal/modules/token/repository"
	tokenService "anoa.com/welfaredesk/internal/modules/token/service"

	userHttp "anoa.com/welfaredesk/internal/modules/user/delivery/http"
	userRepo "anoa.com/welfaredesk/internal/modules/user/repository"
	userService "anoa.com/welfaredesk/internal/modules/user/service"
)

// Deps is everything the router needs. Tests pass in-memory repositories.
type Deps struct {
	Accounts      userRepo.AccountRepository
	Beneficiaries beneficiaryRepo.BeneficiaryRepository
	Tokens        tokenRepo.TokenRepository
	Actions       actionRepo.ActionRepository

	Credentials *credential.Manager
	Uploader    media.Uploader
	Logger      *zap.Logger
	Metrics     *metrics.Metrics

	AllowedOrigins []string
	TokenNumbers   tokenService.NumberSource
	LoginThrottle  userService.LoginThrottle

	// Ready reports whether the backing store is reachable.
	Ready func(ctx context.Context) error
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    *zap.Logger
}

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewServer(deps Deps, opts Options) *Server {
	engine := NewRouter(deps)
	return &Server{
		engine: engine,
		log:    deps.Logger,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
	}
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func NewRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	authSvc := userService.NewAuthService(deps.Accounts, deps.Credentials, deps.LoginThrottle)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(deps.Accounts, deps.Uploader)
	userHandler := userHttp.NewUserHandler(userSvc)

	beneficiarySvc := beneficiaryService.NewBeneficiaryService(deps.Beneficiaries, deps.Uploader)
	beneficiaryHandler := beneficiaryHttp.NewBeneficiaryHandler(beneficiarySvc)

	tokenSvc := tokenService.NewTokenService(deps.Tokens, deps.Beneficiaries, deps.TokenNumbers)
	tokenHandler := tokenHttp.NewTokenHandler(tokenSvc)

	actionSvc := actionService.NewActionService(deps.Actions, deps.Tokens)
	actionHandler := actionHttp.NewActionHandler(actionSvc)

	router := gin.New()

	setupCORS(router, deps.AllowedOrigins)

	router.Use(logger.Recovery(log))
	router.Use(logger.Middleware(log))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "Route not found.")
	})

	router.GET("/healthz", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(c.Request.Context()); err != nil {
				response.Logger(c).Warn("readiness check failed", zap.Error(err))
				response.Fail(c, http.StatusServiceUnavailable, "Service unavailable.")
				return
			}
		}
		response.OK(c, nil, "OK")
	})

	auth := middleware.NewAuthMiddleware(deps.Accounts, deps.Credentials)
	admin := auth.Authenticate(entity.RoleAdmin)
	intake := auth.Authenticate(entity.RoleAdmin, entity.RoleReceptionist)
	casework := auth.Authenticate(entity.RoleAdmin, entity.RoleStaff)

	users := router.Group("/users")
	{
		users.POST("/login", authHandler.Login)
		users.GET("/cookie", auth.Authenticate(), authHandler.Me)
		users.POST("/register", admin, userHandler.Register)
		users.GET("", admin, userHandler.GetAllUsers)
		users.GET("/:id", admin, userHandler.GetUser)
		users.PUT("/edit/:id", admin, userHandler.EditUser)
		users.DELETE("/delete/:id", admin, userHandler.DeleteUser)
	}

	beneficiaries := router.Group("/beneficiaries")
	{
		beneficiaries.GET("", admin, beneficiaryHandler.GetBeneficiaries)
		beneficiaries.GET("/single", intake, beneficiaryHandler.GetSingleBeneficiary)
		beneficiaries.POST("/add", intake, beneficiaryHandler.AddBeneficiary)
		beneficiaries.PUT("/edit/:id", intake, beneficiaryHandler.EditBeneficiary)
	}

	tokens := router.Group("/tokens")
	{
		tokens.GET("", admin, tokenHandler.GetTokens)
		tokens.GET("/:id", casework, tokenHandler.GetToken)
		tokens.POST("/generate", intake, tokenHandler.GenerateToken)
		tokens.PUT("/edit/:id", casework, tokenHandler.EditToken)
	}

	actions := router.Group("/actions")
	{
		actions.GET("/:tokenId", casework, actionHandler.GetActions)
		actions.POST("/add", casework, actionHandler.AddAction)
	}

	return router
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
