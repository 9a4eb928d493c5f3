package handlers

import (
	"net/http"
	"strings"

	"wetech/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const flashCookie = "wetech_flash"

// Flasher queues one-shot messages for the visitor's next page view.
type Flasher struct {
	store  utils.FlashStore
	secure bool
	logger *zap.Logger
}

func NewFlasher(store utils.FlashStore, secure bool, logger *zap.Logger) *Flasher {
	return &Flasher{store: store, secure: secure, logger: logger}
}

func (f *Flasher) sessionID(c *gin.Context, create bool) string {
	if id, err := c.Cookie(flashCookie); err == nil && id != "" {
		return id
	}
	if !create {
		return ""
	}
	id := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, id, 0, "/", "", f.secure, true)
	return id
}

// Add queues a message. Flash failures are logged, never surfaced.
func (f *Flasher) Add(c *gin.Context, level, message string) {
	id := f.sessionID(c, true)
	if err := f.store.Add(c.Request.Context(), id, utils.Flash{Level: level, Message: strings.TrimSpace(message)}); err != nil {
		getLogger(c, f.logger).Warn("Could not store flash message", zap.Error(err))
	}
}

// Pop returns and clears the visitor's queued messages.
func (f *Flasher) Pop(c *gin.Context) []utils.Flash {
	id := f.sessionID(c, false)
	if id == "" {
		return []utils.Flash{}
	}
	flashes, err := f.store.Pop(c.Request.Context(), id)
	if err != nil {
		getLogger(c, f.logger).Warn("Could not read flash messages", zap.Error(err))
		return []utils.Flash{}
	}
	if flashes == nil {
		return []utils.Flash{}
	}
	return flashes
}
