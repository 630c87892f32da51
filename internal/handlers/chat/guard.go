package handlers

import (
	"context"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/handlers/base"
	"github.com/iamwavecut/guardbot/internal/moderation"
)

// Guard adapts platform updates to the moderation core. Group messages are
// moderated first and only surviving commands get routed.
type Guard struct {
	*base.Handler
	engine      *moderation.Engine
	admin       *moderation.AdminCommands
	actions     moderation.Actions
	texts       moderation.Texts
	botUserName string
}

func NewGuard(engine *moderation.Engine, admin *moderation.AdminCommands, actions moderation.Actions, texts moderation.Texts, botUserName string) *Guard {
	g := &Guard{
		Handler:     base.NewHandler("guard"),
		engine:      engine,
		admin:       admin,
		actions:     actions,
		texts:       texts,
		botUserName: strings.TrimPrefix(botUserName, "@"),
	}
	g.getLogEntry().Debug("created new guard")
	return g
}

func (g *Guard) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if err := g.ValidateUpdate(ctx, u); err != nil {
		return false, err
	}

	switch {
	case u.ChatMember != nil:
		return g.handleMemberUpdate(ctx, u.ChatMember), nil
	case u.MyChatMember != nil:
		g.handleOwnMembership(u.MyChatMember)
		return true, nil
	case u.Message != nil:
		return g.handleMessage(ctx, u.Message), nil
	}
	return true, nil
}

func (g *Guard) handleMemberUpdate(ctx context.Context, upd *api.ChatMemberUpdated) bool {
	if !bot.IsGroup(&upd.Chat) {
		return true
	}
	ev, ok := memberEvent(upd)
	if !ok {
		g.getLogEntry().WithField("chat_id", upd.Chat.ID).Debug("member update without user")
		return true
	}
	g.engine.OnJoin(ctx, ev)
	return true
}

func (g *Guard) handleOwnMembership(upd *api.ChatMemberUpdated) {
	entry := g.getLogEntry().WithFields(log.Fields{
		"method":     "handleOwnMembership",
		"chat_id":    upd.Chat.ID,
		"chat_title": upd.Chat.Title,
		"status":     upd.NewChatMember.Status,
	})
	switch {
	case upd.NewChatMember.Status == moderation.StatusLeft || upd.NewChatMember.Status == moderation.StatusKicked:
		entry.Info("removed from chat")
	case !bot.IsGroup(&upd.Chat):
		entry.Debug("membership changed outside of a group")
	case canModerate(&upd.NewChatMember):
		entry.Info("ready to moderate")
	default:
		entry.Warn("missing delete or ban rights, moderation actions will fail")
	}
}

func (g *Guard) handleMessage(ctx context.Context, msg *api.Message) bool {
	if err := g.ValidateMessage(msg); err != nil {
		g.getLogEntry().WithFields(log.Fields{
			"chat_id":    msg.Chat.ID,
			"message_id": msg.MessageID,
			"error":      err.Error(),
		}).Debug("skipping message")
		return true
	}
	ev := messageEvent(msg)
	if !bot.IsGroup(&msg.Chat) {
		if msg.Chat.Type == "private" && ev.Command != "" && g.addressedToMe(msg) {
			g.handleStaticCommand(ctx, msg.Chat.ID, ev.Command)
		}
		return true
	}

	decision := g.engine.Moderate(ctx, ev)
	if decision.Deleted() {
		return false
	}
	if ev.Command != "" && g.addressedToMe(msg) {
		g.handleCommand(ctx, ev)
	}
	return true
}

// addressedToMe filters out commands like /rules@other_bot.
func (g *Guard) addressedToMe(msg *api.Message) bool {
	withAt := msg.CommandWithAt()
	i := strings.Index(withAt, "@")
	if i < 0 || g.botUserName == "" {
		return true
	}
	return strings.EqualFold(withAt[i+1:], g.botUserName)
}

func (g *Guard) getLogEntry() *log.Entry {
	return g.GetLogger().WithField("object", "Guard")
}
