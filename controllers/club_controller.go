// File: /controllers/club_controller.go
package controllers

import (
	"net/http"

	"clubnight-api/middleware"
	"clubnight-api/services"
	"clubnight-api/utils"
	"github.com/gin-gonic/gin"
)

type ClubController struct {
	clubs *services.ClubService
}

func NewClubController(clubs *services.ClubService) *ClubController {
	return &ClubController{clubs: clubs}
}

type ClubLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (cc *ClubController) Register(c *gin.Context) {
	var req services.RegisterClubInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := cc.clubs.Register(c.Request.Context(), req); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Club registered successfully!", nil)
}

func (cc *ClubController) Login(c *gin.Context) {
	var req ClubLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	pair, err := cc.clubs.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Logged in successfully, welcome!",
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (cc *ClubController) RefreshToken(c *gin.Context) {
	email, refresh := c.Query("email"), c.Query("refresh_token")
	if email == "" || refresh == "" {
		utils.SendValidationError(c, "email and refresh_token are required")
		return
	}

	token, err := cc.clubs.Refresh(c.Request.Context(), email, refresh)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (cc *ClubController) Update(c *gin.Context) {
	var req services.UpdateClubInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := cc.clubs.Update(c.Request.Context(), middleware.CurrentEmail(c), req); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Club updated successfully.", nil)
}

// Nearby lists clubs in the box around query parameters latitude and longitude.
func (cc *ClubController) Nearby(c *gin.Context) {
	clubs, err := cc.clubs.Nearby(c.Request.Context(), c.Query("latitude"), c.Query("longitude"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Got clubs.", "clubs": clubs})
}

func (cc *ClubController) Giveaways(c *gin.Context) {
	giveaways, err := cc.clubs.Giveaways(c.Request.Context(), middleware.CurrentEmail(c))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Got clubs giveaways!", "giveaways": giveaways})
}
