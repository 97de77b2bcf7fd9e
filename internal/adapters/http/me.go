package http

import (
	nethttp "net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/dkeye/whowasi/internal/adapters/signal"
	"github.com/dkeye/whowasi/internal/domain"
)

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetMe returns the caller's client token and display name.
func GetMe(c *gin.Context) {
	name, _ := sessions.Default(c).Get(signal.DisplayNameKey).(string)
	if name == "" {
		name = domain.DefaultUsername
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"client_token": c.GetString(signal.ClientTokenKey),
		"display_name": name,
	})
}

// SetDisplayName stores the display name used by new websocket sessions.
func SetDisplayName(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "name is required")
		return
	}
	name, err := domain.ValidateUsername(req.Name)
	if err != nil {
		writeValidation(c, err.Error())
		return
	}

	session := sessions.Default(c)
	session.Set(signal.DisplayNameKey, name)
	if err := session.Save(); err != nil {
		writeInternal(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"display_name": name})
}
