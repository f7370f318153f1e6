package handler

import (
	"errors"
	"net/http"
	"strconv"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/middleware"
	"careconnect-backend/internal/observability"
	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondError writes err using its kind. Unclassified errors are logged
// and replaced by fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.ErrorResponse(c, http.StatusInternalServerError, fallback)
		return
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		utils.ValidationErrorResponse(c, appErr.Messages, appErr.Input)
	case apperr.KindAuthz:
		c.JSON(http.StatusForbidden, gin.H{
			"success":  false,
			"error":    middleware.DeniedMessage,
			"redirect": "/",
		})
	default:
		utils.ErrorResponse(c, apperr.HTTPStatus(appErr.Kind), appErr.Message())
	}
}

func actorFrom(c *gin.Context) service.Actor {
	id := middleware.IdentityFrom(c)
	return service.Actor{UserID: id.UserID, Role: id.Role}
}

// pathID parses the numeric :id path parameter
func pathID(c *gin.Context, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}
