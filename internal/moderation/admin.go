package moderation

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/observability"
	"github.com/iamwavecut/guardbot/internal/policy/permissions"
)

// AdminCommand is a privileged command issued as a reply to a target message.
type AdminCommand struct {
	ChatID    int64
	MessageID int
	Issuer    User
	ReplyTo   *Reply
}

func (c AdminCommand) target() (User, bool) {
	if c.ReplyTo == nil || c.ReplyTo.From == nil || c.ReplyTo.From.ID == 0 {
		return User{}, false
	}
	return *c.ReplyTo.From, true
}

// AdminCommands handles /warn and /ban. Warnings are not recorded anywhere.
type AdminCommands struct {
	admins  permissions.AdminSet
	actions Actions
	texts   Texts
}

func NewAdminCommands(admins permissions.AdminSet, actions Actions, texts Texts) *AdminCommands {
	return &AdminCommands{
		admins:  admins,
		actions: actions,
		texts:   texts,
	}
}

func (a *AdminCommands) Warn(ctx context.Context, cmd AdminCommand) bool {
	entry := a.getLogEntry(cmd).WithField("method", "Warn")
	if !a.admins.Contains(cmd.Issuer.ID) {
		entry.Debug("ignoring command from non-admin")
		return false
	}
	target, ok := cmd.target()
	if !ok {
		a.reply(ctx, entry, cmd, a.texts.Render(keyWarnUsage, nil))
		return false
	}

	entry.WithField("target_id", target.ID).Info("warning user")
	a.reply(ctx, entry, cmd, a.texts.Render(keyWarnNotice, map[string]any{
		"mention": target.Mention(),
	}))
	return true
}

func (a *AdminCommands) Ban(ctx context.Context, cmd AdminCommand) bool {
	entry := a.getLogEntry(cmd).WithField("method", "Ban")
	if !a.admins.Contains(cmd.Issuer.ID) {
		entry.Debug("ignoring command from non-admin")
		return false
	}
	target, ok := cmd.target()
	if !ok {
		a.reply(ctx, entry, cmd, a.texts.Render(keyBanUsage, nil))
		return false
	}

	entry = entry.WithField("target_id", target.ID)
	if res := a.actions.BanMember(ctx, cmd.ChatID, target.ID); !res.OK() {
		observability.RecordActionFailure("ban")
		entry.WithField("error", res.Err.Error()).Error("failed to ban user")
		a.reply(ctx, entry, cmd, a.texts.Render(keyBanFailed, nil))
		return false
	}

	entry.Info("banned user")
	a.reply(ctx, entry, cmd, a.texts.Render(keyBanDone, map[string]any{
		"mention": target.Mention(),
	}))
	return true
}

func (a *AdminCommands) reply(ctx context.Context, entry *log.Entry, cmd AdminCommand, text string) {
	if res := a.actions.SendMessage(ctx, cmd.ChatID, text, cmd.MessageID); !res.OK() {
		observability.RecordActionFailure("send")
		entry.WithField("error", res.Err.Error()).Warn("failed to send reply")
	}
}

func (a *AdminCommands) getLogEntry(cmd AdminCommand) *log.Entry {
	return log.WithFields(log.Fields{
		"object":    "AdminCommands",
		"chat_id":   cmd.ChatID,
		"issuer_id": cmd.Issuer.ID,
	})
}
