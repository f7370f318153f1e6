package handler

import (
	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the activity-logs page of every role
type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

func (h *ActivityHandler) Logs(c *gin.Context) {
	logs, err := h.activityService.Recent(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch activity logs")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
