package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lottoroom/lottoroom-backend/internal/config"
	"github.com/lottoroom/lottoroom-backend/internal/handlers"
	"github.com/lottoroom/lottoroom-backend/internal/middleware"
	"github.com/lottoroom/lottoroom-backend/internal/services"
)

// SetupRouter sets up the router
func SetupRouter(
	cfg *config.Config,
	settlement services.SettlementService,
	authService services.AuthService,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	roomHandler := handlers.NewRoomHandler(settlement)
	ticketHandler := handlers.NewTicketHandler(settlement)
	adminHandler := handlers.NewAdminHandler(settlement)
	authHandler := handlers.NewAuthHandler(authService)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
		public.GET("/status", adminHandler.Status)

		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Room listings are public reads
		public.GET("/rooms", roomHandler.ListRooms)
		public.GET("/rooms/:id", roomHandler.GetRoom)
		public.GET("/rooms/:id/tickets", ticketHandler.ListRoundTickets)
		public.GET("/rooms/:id/claims/:round/:index", ticketHandler.ClaimStatus)
	}

	// Authenticated player routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/rooms/:id/tickets", ticketHandler.BuyTicket)
		protected.GET("/rooms/:id/tickets/mine", ticketHandler.MyTickets)
		protected.POST("/rooms/:id/claims", ticketHandler.Claim)
		protected.GET("/players/me/stats", ticketHandler.MyStats)
	}

	// Operator-only routes
	operator := router.Group("/api/v1")
	operator.Use(middleware.JWTAuthMiddleware(cfg), middleware.RequireOperator())
	{
		operator.POST("/rooms", roomHandler.CreateRoom)
		operator.POST("/rooms/:id/reveal", roomHandler.Reveal)
		operator.POST("/rooms/:id/reset", roomHandler.Reset)
		operator.POST("/rooms/:id/close", roomHandler.ForceClose)

		admin := operator.Group("/admin")
		{
			admin.POST("/pause", adminHandler.Pause)
			admin.POST("/resume", adminHandler.Resume)
			admin.GET("/fees", adminHandler.FeeAccount)
			admin.POST("/fees/withdraw", adminHandler.WithdrawFees)
			admin.PUT("/fees/recipient", adminHandler.SetFeeRecipient)
		}
	}

	return router
}
