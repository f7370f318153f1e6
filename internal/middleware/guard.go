package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeniedMessage is the only text a caller sees when its role does not
// match the area
const DeniedMessage = "You do not have permission to access this page"

// Identity is who the caller is, as established by AuthMiddleware
type Identity struct {
	UserID        uint
	Role          string
	Authenticated bool
}

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Authorize decides whether id may enter an area restricted to roles.
// An empty roles list admits any authenticated caller.
func Authorize(id Identity, roles ...string) Decision {
	if !id.Authenticated {
		return Unauthenticated
	}
	if len(roles) == 0 {
		return Allow
	}
	for _, r := range roles {
		if id.Role == r {
			return Allow
		}
	}
	return Forbidden
}

// IdentityFrom reads the identity AuthMiddleware stored on c
func IdentityFrom(c *gin.Context) Identity {
	userID, ok := c.Get(ctxUserID)
	if !ok {
		return Identity{}
	}
	id, ok := userID.(uint)
	if !ok {
		return Identity{}
	}
	return Identity{UserID: id, Role: c.GetString(ctxRole), Authenticated: true}
}

// RequireRole restricts the following handlers to the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Authorize(IdentityFrom(c), roles...) {
		case Allow:
			c.Next()
		case Unauthenticated:
			unauthenticated(c, "Please login to continue")
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":  false,
				"error":    DeniedMessage,
				"redirect": "/",
			})
		}
	}
}
