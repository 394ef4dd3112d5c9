// File: /controllers/event_controller.go
package controllers

import (
	"io"
	"net/http"

	"clubnight-api/middleware"
	"clubnight-api/services"
	"clubnight-api/utils"
	"github.com/gin-gonic/gin"
)

const maxCoverBytes = 10 << 20

type EventController struct {
	events        *services.EventService
	search        *services.SearchService
	participation *services.ParticipationService
	clubs         *services.ClubService
}

func NewEventController(events *services.EventService, search *services.SearchService, participation *services.ParticipationService, clubs *services.ClubService) *EventController {
	return &EventController{events: events, search: search, participation: participation, clubs: clubs}
}

type EventIDRequest struct {
	EventID string `json:"event_id"`
}

type ImageLinkRequest struct {
	EventID   string `json:"event_id"`
	ImageLink string `json:"image_link"`
}

func (ec *EventController) Search(c *gin.Context) {
	events, err := ec.search.Search(c.Request.Context(), services.SearchQuery{
		Name:      c.Query("name"),
		Theme:     c.Query("theme"),
		Genre:     c.Query("genre"),
		Type:      c.Query("type"),
		Date:      c.Query("date"),
		Latitude:  c.Query("latitude"),
		Longitude: c.Query("longitude"),
	})
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Search completed successfully.", "events": events})
}

func (ec *EventController) ClubEvents(c *gin.Context) {
	clubID := c.Query("club_id")
	if clubID == "" {
		utils.SendValidationError(c, "Missing required attribute: club_id")
		return
	}

	events, err := ec.clubs.Events(c.Request.Context(), clubID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Got clubs events", "events": events})
}

func (ec *EventController) Register(c *gin.Context) {
	var req services.RegisterEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	event, giveaway, err := ec.events.Register(c.Request.Context(), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Event registered successfully!",
		"event_id":    event.EventID,
		"giveaway_id": giveaway.GiveawayID,
	})
}

func (ec *EventController) Info(c *gin.Context) {
	eventID := c.Query("event_id")
	if eventID == "" {
		utils.SendValidationError(c, "Missing required attribute: event_id")
		return
	}

	info, err := ec.events.Info(c.Request.Context(), eventID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (ec *EventController) Join(c *gin.Context) {
	var req EventIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EventID == "" {
		utils.SendValidationError(c, "Missing required attribute: event_id")
		return
	}

	if err := ec.participation.JoinEvent(c.Request.Context(), middleware.CurrentEmail(c), req.EventID); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Successfully joined the event.", nil)
}

func (ec *EventController) Leave(c *gin.Context) {
	var req EventIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EventID == "" {
		utils.SendValidationError(c, "Missing required attribute: event_id")
		return
	}

	if err := ec.participation.LeaveEvent(c.Request.Context(), middleware.CurrentEmail(c), req.EventID); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Successfully left the event.", nil)
}

func (ec *EventController) AddImage(c *gin.Context) {
	var req ImageLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}
	if req.EventID == "" || req.ImageLink == "" {
		utils.SendValidationError(c, "Missing required attributes: event_id, image_link")
		return
	}

	image, err := ec.events.AddImageLink(c.Request.Context(), middleware.CurrentEmail(c), req.EventID, req.ImageLink)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Image saved successfully.", image)
}

// UploadCover stores the multipart field "image" as the event cover.
func (ec *EventController) UploadCover(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.SendValidationError(c, "Missing required attribute: image")
		return
	}
	if file.Size > maxCoverBytes {
		utils.SendValidationError(c, "image is too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.SendValidationError(c, "image could not be read")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCoverBytes))
	if err != nil {
		utils.SendValidationError(c, "image could not be read")
		return
	}

	if err := ec.events.UploadCover(c.Request.Context(), middleware.CurrentEmail(c), c.Param("id"), data); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Cover image saved successfully.", nil)
}
