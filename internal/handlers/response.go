package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/middleware"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

// Every JSON response uses the same envelope: {success, data} on the happy
// path, {success, error} otherwise.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func RespondError(c *gin.Context, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, Envelope{Success: false, Error: msg})
}

func RespondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Error: msg})
}

// currentUser reads the identity the auth middleware stashed. Handlers
// behind RequireAuth can assume it is present.
func currentUser(c *gin.Context) *types.User {
	v, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*types.User)
	return user
}
