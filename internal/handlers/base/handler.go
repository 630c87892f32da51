package base

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	gerrors "github.com/iamwavecut/guardbot/internal/errors"
)

// Handler provides common functionality for update handlers
type Handler struct {
	logger *log.Entry
}

func NewHandler(handlerName string) *Handler {
	return &Handler{
		logger: log.WithField("handler", handlerName),
	}
}

func (h *Handler) GetLogger() *log.Entry {
	return h.logger
}

// ValidateUpdate rejects nil updates and cancelled contexts before any work
// is done.
func (h *Handler) ValidateUpdate(ctx context.Context, u *api.Update) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if u == nil {
		return gerrors.ErrNilUpdate
	}
	return nil
}

// ValidateMessage rejects messages that cannot be attributed to a sender.
func (h *Handler) ValidateMessage(msg *api.Message) error {
	if msg == nil {
		return gerrors.ErrEmptyMessage
	}
	if msg.From == nil {
		return gerrors.ErrNilChatOrUser
	}
	return nil
}
