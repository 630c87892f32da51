package telegram

import (
	"context"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"

	gerrors "github.com/iamwavecut/guardbot/internal/errors"
	"github.com/iamwavecut/guardbot/internal/moderation"
)

// Requester is the subset of *api.BotAPI used for moderation actions.
type Requester interface {
	Request(c api.Chattable) (*api.APIResponse, error)
	Send(c api.Chattable) (api.Message, error)
}

// Operations carries out moderation actions against the Bot API. Every call
// reports its outcome as a moderation.Result instead of an error.
type Operations struct {
	bot Requester
}

var _ moderation.Actions = (*Operations)(nil)

func NewOperations(bot Requester) *Operations {
	return &Operations{bot: bot}
}

func (o *Operations) DeleteMessage(ctx context.Context, chatID int64, messageID int) moderation.Result {
	if err := ctx.Err(); err != nil {
		return moderation.Result{Err: err}
	}
	if _, err := o.bot.Request(api.NewDeleteMessage(chatID, messageID)); err != nil {
		return moderation.Result{Err: withPrivilegeError(err, "delete message")}
	}
	return moderation.Result{MessageID: messageID}
}

func (o *Operations) SendMessage(ctx context.Context, chatID int64, text string, replyTo int) moderation.Result {
	if err := ctx.Err(); err != nil {
		return moderation.Result{Err: err}
	}
	msg := api.NewMessage(chatID, text)
	msg.ParseMode = api.ModeHTML
	msg.LinkPreviewOptions.IsDisabled = true
	if replyTo != 0 {
		msg.ReplyParameters = api.ReplyParameters{
			ChatID:                   chatID,
			MessageID:                replyTo,
			AllowSendingWithoutReply: true,
		}
	}
	sent, err := o.bot.Send(msg)
	if err != nil {
		return moderation.Result{Err: withPrivilegeError(err, "send message")}
	}
	return moderation.Result{MessageID: sent.MessageID}
}

// BanMember bans permanently; the platform treats a zero until date as forever.
func (o *Operations) BanMember(ctx context.Context, chatID int64, userID int64) moderation.Result {
	if err := ctx.Err(); err != nil {
		return moderation.Result{Err: err}
	}
	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
	}
	if _, err := o.bot.Request(config); err != nil {
		return moderation.Result{Err: withPrivilegeError(err, "ban member")}
	}
	return moderation.Result{}
}

func withPrivilegeError(err error, action string) error {
	msg := err.Error()
	if strings.Contains(msg, "not enough rights") || strings.Contains(msg, "CHAT_ADMIN_REQUIRED") {
		return errors.Wrapf(gerrors.ErrNoPrivileges, "%s: %s", action, msg)
	}
	return errors.Wrapf(err, "failed to %s", action)
}
