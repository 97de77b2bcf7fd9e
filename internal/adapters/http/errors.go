package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/domain"
)

// writeJoinError maps join failures to responses. Unknown rooms and
// wrong passwords produce the same status and body.
func writeJoinError(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindBadPassword:
		c.JSON(nethttp.StatusNotFound, gin.H{"error": "room unavailable"})
	case domain.KindExpired:
		c.JSON(nethttp.StatusGone, gin.H{"error": "room is no longer available"})
	default:
		writeInternal(c, err)
	}
}

func writeValidation(c *gin.Context, msg string) {
	c.JSON(nethttp.StatusUnprocessableEntity, gin.H{"error": msg})
}

func writeInternal(c *gin.Context, err error) {
	log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("internal error")
	c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "internal server error"})
}
