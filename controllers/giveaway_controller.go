// File: /controllers/giveaway_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"clubnight-api/middleware"
	"clubnight-api/services"
	"clubnight-api/utils"
	"github.com/gin-gonic/gin"
)

type GiveawayController struct {
	giveaways *services.GiveawayService
}

func NewGiveawayController(giveaways *services.GiveawayService) *GiveawayController {
	return &GiveawayController{giveaways: giveaways}
}

// Join enters the caller into a giveaway. entrance_number defaults to 1.
func (gc *GiveawayController) Join(c *gin.Context) {
	giveawayID := c.Query("giveaway_id")
	if giveawayID == "" {
		utils.SendValidationError(c, "Missing required attribute: giveaway_id")
		return
	}

	entrance, err := strconv.Atoi(c.DefaultQuery("entrance_number", "1"))
	if err != nil {
		utils.SendValidationError(c, "entrance_number must be a whole number")
		return
	}

	if err := gc.giveaways.Join(c.Request.Context(), giveawayID, middleware.CurrentEmail(c), entrance); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Joined giveaway successfully!", nil)
}

func (gc *GiveawayController) Winner(c *gin.Context) {
	giveawayID := c.Query("giveaway_id")
	if giveawayID == "" {
		utils.SendValidationError(c, "Missing required attribute: giveaway_id")
		return
	}

	winner, err := gc.giveaways.Draw(c.Request.Context(), giveawayID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Winner drawn successfully!", "winner": winner})
}
