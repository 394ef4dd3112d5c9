// File: /controllers/user_controller.go
package controllers

import (
	"net/http"

	"clubnight-api/middleware"
	"clubnight-api/services"
	"clubnight-api/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) GetPublicInfo(c *gin.Context) {
	info, err := uc.users.PublicInfo(c.Request.Context(), middleware.CurrentEmail(c))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": info})
}

func (uc *UserController) UpdatePublicInfo(c *gin.Context) {
	var req services.UpdatePublicInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := uc.users.UpdatePublicInfo(c.Request.Context(), middleware.CurrentEmail(c), req); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Your public info has been updated successfully.", nil)
}

func (uc *UserController) UpdatePrivateInfo(c *gin.Context) {
	var req services.UpdatePrivateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := uc.users.UpdatePrivateInfo(c.Request.Context(), middleware.CurrentEmail(c), req); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Your private info has been updated successfully.", nil)
}

func (uc *UserController) DeleteProfile(c *gin.Context) {
	if err := uc.users.DeleteProfile(c.Request.Context(), middleware.CurrentEmail(c)); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Deleted profile successfully.", nil)
}

func (uc *UserController) Leaderboard(c *gin.Context) {
	entries, err := uc.users.Leaderboard(c.Request.Context())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": entries})
}

func (uc *UserController) JoinedEvents(c *gin.Context) {
	events, err := uc.users.JoinedEvents(c.Request.Context(), middleware.CurrentEmail(c))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Got users events!", "events": events})
}
