package http

import (
	"errors"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/whowasi/internal/app/orch"
	"github.com/dkeye/whowasi/internal/domain"
)

type RoomHandler struct {
	Orch *orch.Orchestrator
}

func NewRoomHandler(o *orch.Orchestrator) *RoomHandler {
	return &RoomHandler{Orch: o}
}

type createRoomRequest struct {
	Name      string     `json:"name" binding:"required,max=100"`
	Password  string     `json:"password" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type joinRoomRequest struct {
	RoomCode string `json:"room_code" form:"room_code" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type roomView struct {
	ID        domain.RoomID   `json:"id"`
	RoomCode  domain.RoomCode `json:"room_code"`
	Name      string          `json:"name"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

type joinTokenView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create handles POST /api/rooms/create.
func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "name and password are required")
		return
	}

	room, err := h.Orch.CreateRoom(c.Request.Context(), req.Name, req.Password, req.ExpiresAt)
	if err != nil {
		switch {
		case errors.Is(err, orch.ErrInvalidRoomName):
			writeValidation(c, "name must be 1 to 100 characters")
		case errors.Is(err, orch.ErrEmptyPassword):
			writeValidation(c, "password must not be empty")
		default:
			writeInternal(c, err)
		}
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"room_code": room.Code})
}

// Join handles POST /api/rooms/join. The body may be JSON or a form;
// query parameters are accepted as form values.
func (h *RoomHandler) Join(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		writeValidation(c, "room_code and password are required")
		return
	}
	code := domain.RoomCode(strings.ToUpper(strings.TrimSpace(req.RoomCode)))
	if !code.Valid() {
		writeValidation(c, "room_code must be 4 to 16 letters or digits")
		return
	}

	res, err := h.Orch.JoinRoom(c.Request.Context(), code, req.Password)
	if err != nil {
		writeJoinError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"room": roomView{
			ID:        res.Room.ID,
			RoomCode:  res.Room.Code,
			Name:      res.Room.Name,
			ExpiresAt: res.Room.ExpiresAt,
		},
		"join_token": joinTokenView{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		},
	})
}
