package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse sends a standard success JSON response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// ErrorResponse sends a standard error JSON response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// DataMessageResponse sends data together with a message for the user
func DataMessageResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// ValidationErrorResponse lists every problem and echoes the submitted
// values so a form can be redisplayed
func ValidationErrorResponse(c *gin.Context, messages []string, input map[string]interface{}) {
	body := gin.H{
		"success": false,
		"error":   firstOf(messages),
		"errors":  messages,
	}
	if input != nil {
		body["input"] = input
	}
	c.JSON(http.StatusBadRequest, body)
}

func firstOf(messages []string) string {
	if len(messages) == 0 {
		return "Invalid request"
	}
	return messages[0]
}
