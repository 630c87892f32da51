package handlers

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/moderation"
	"github.com/iamwavecut/guardbot/internal/observability"
)

var staticCommands = map[string]string{
	"start":   keyStartText,
	"rules":   keyRulesText,
	"welcome": keyWelcomeText,
	"help":    keyHelpText,
}

func (g *Guard) handleCommand(ctx context.Context, ev moderation.MessageEvent) {
	switch ev.Command {
	case "warn":
		g.admin.Warn(ctx, adminCommand(ev))
	case "ban":
		g.admin.Ban(ctx, adminCommand(ev))
	default:
		g.handleStaticCommand(ctx, ev.ChatID, ev.Command)
	}
}

func (g *Guard) handleStaticCommand(ctx context.Context, chatID int64, command string) {
	key, ok := staticCommands[command]
	if !ok {
		return
	}
	if res := g.actions.SendMessage(ctx, chatID, g.texts.Render(key, nil), 0); !res.OK() {
		observability.RecordActionFailure("send")
		g.getLogEntry().WithFields(log.Fields{
			"method":  "handleStaticCommand",
			"chat_id": chatID,
			"command": command,
			"error":   res.Err.Error(),
		}).Warn("failed to answer command")
	}
}

func adminCommand(ev moderation.MessageEvent) moderation.AdminCommand {
	return moderation.AdminCommand{
		ChatID:    ev.ChatID,
		MessageID: ev.MessageID,
		Issuer:    ev.Sender,
		ReplyTo:   ev.ReplyTo,
	}
}
