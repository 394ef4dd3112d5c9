// File: /routes/routes.go
package routes

import (
	"net/http"

	"clubnight-api/controllers"
	"clubnight-api/middleware"
	"clubnight-api/services"
	"github.com/gin-gonic/gin"
)

// Handlers groups the controllers mounted by SetupRoutes
type Handlers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Clubs     *controllers.ClubController
	Events    *controllers.EventController
	Giveaways *controllers.GiveawayController
}

// SetupRoutes mounts the API under /api/v1. authLimit is applied to the
// unauthenticated credential endpoints.
func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenVerifier, authLimit gin.HandlerFunc) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	requireUser := middleware.AuthMiddleware(tokens, services.RoleUser)
	requireClub := middleware.AuthMiddleware(tokens, services.RoleClub)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authLimit, h.Auth.Register)
		auth.POST("/request-login", authLimit, h.Auth.RequestLogin)
		auth.POST("/validate-login", authLimit, h.Auth.ValidateLogin)
		auth.POST("/request-password-change", authLimit, h.Auth.RequestPasswordChange)
		auth.POST("/validate-password-change", authLimit, h.Auth.ValidatePasswordChange)
		auth.POST("/confirm-password-change", authLimit, h.Auth.ConfirmPasswordChange)
		auth.GET("/refresh-token", h.Auth.RefreshToken)
		auth.GET("/third-party-login", h.Auth.ThirdPartyLogin)
		auth.GET("/third-party-login/confirm", h.Auth.ThirdPartyLoginConfirm)
		auth.POST("/logout", requireUser, h.Auth.Logout)
	}

	users := v1.Group("/users", requireUser)
	{
		users.GET("/profile", h.Users.GetPublicInfo)
		users.PUT("/profile", h.Users.UpdatePublicInfo)
		users.DELETE("/profile", h.Users.DeleteProfile)
		users.PUT("/profile/private", h.Users.UpdatePrivateInfo)
		users.GET("/leaderboard", h.Users.Leaderboard)
		users.GET("/events", h.Users.JoinedEvents)
	}

	clubs := v1.Group("/clubs")
	{
		clubs.POST("/register", authLimit, h.Clubs.Register)
		clubs.POST("/login", authLimit, h.Clubs.Login)
		clubs.GET("/refresh-token", h.Clubs.RefreshToken)
		clubs.PUT("", requireClub, h.Clubs.Update)
		clubs.GET("/nearby", requireUser, h.Clubs.Nearby)
		clubs.GET("/giveaways", requireClub, h.Clubs.Giveaways)
	}

	events := v1.Group("/events")
	{
		events.GET("/search", h.Events.Search)
		events.GET("/club", h.Events.ClubEvents)
		events.POST("", h.Events.Register)
		events.GET("/info", requireUser, h.Events.Info)
		events.POST("/join", requireUser, h.Events.Join)
		events.POST("/leave", requireUser, h.Events.Leave)
		events.POST("/images", requireUser, h.Events.AddImage)
		events.POST("/:id/cover", requireClub, h.Events.UploadCover)
	}

	giveaways := v1.Group("/giveaways")
	{
		giveaways.POST("/join", requireUser, h.Giveaways.Join)
		giveaways.GET("/winner", h.Giveaways.Winner)
	}
}

// SetupCORS allows browser clients from any origin
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
