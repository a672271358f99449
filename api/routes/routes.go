package routes

import (
	"github.com/ArowuTest/raffle-explorer/internal/config"
	"github.com/ArowuTest/raffle-explorer/internal/handlers"
	"github.com/ArowuTest/raffle-explorer/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerDependencies holds everything the router wires into routes.
// AuthHandler and Tokens are nil when wallet sign-in is disabled.
type HandlerDependencies struct {
	RaffleHandler *handlers.RaffleHandler
	AuthHandler   *handlers.AuthHandler
	Tokens        middleware.TokenParser
	Logger        *zap.Logger
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log.Named("http")))

	public := router.Group("/api/v1")
	{
		public.GET("/health", deps.RaffleHandler.Health)
		public.GET("/theme", handlers.GetTheme)

		if deps.AuthHandler != nil {
			auth := public.Group("/auth")
			{
				auth.POST("/challenge", deps.AuthHandler.Challenge)
				auth.POST("/verify", deps.AuthHandler.Verify)
			}
		}
	}

	raffles := router.Group("/api/v1/raffles")
	raffles.Use(middleware.WalletIdentityMiddleware(deps.Tokens))
	{
		raffles.GET("", deps.RaffleHandler.ListRaffles)
		raffles.GET("/:id", deps.RaffleHandler.GetRaffle)
		raffles.GET("/:id/winners", deps.RaffleHandler.GetRaffleWinners)
	}

	admin := router.Group("/api/v1/raffles")
	admin.Use(middleware.AdminKeyMiddleware(cfg.Admin.APIKeyHash))
	{
		admin.POST("/refresh", deps.RaffleHandler.RefreshRaffles)
	}

	return router
}
