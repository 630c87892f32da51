package handlers

import (
	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/moderation"
	"github.com/iamwavecut/guardbot/internal/policy/permissions"
)

func toUser(u *api.User) moderation.User {
	return moderation.User{
		ID:       u.ID,
		UserName: u.UserName,
		FullName: bot.GetFullName(u),
		IsBot:    u.IsBot,
	}
}

func memberEvent(upd *api.ChatMemberUpdated) (moderation.MemberEvent, bool) {
	if upd.NewChatMember.User == nil {
		return moderation.MemberEvent{}, false
	}
	return moderation.MemberEvent{
		ChatID:         upd.Chat.ID,
		User:           toUser(upd.NewChatMember.User),
		PreviousStatus: upd.OldChatMember.Status,
		NewStatus:      upd.NewChatMember.Status,
	}, true
}

func messageEvent(msg *api.Message) moderation.MessageEvent {
	ev := moderation.MessageEvent{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.MessageID,
		IsAdminHint: permissions.IsAnonymousAdmin(msg),
		Text:        msg.Text,
		LinkCount:   countLinks(msg.Entities) + countLinks(msg.CaptionEntities),
		Attachment:  attachmentKind(msg),
	}
	if msg.From != nil {
		ev.Sender = toUser(msg.From)
	}
	if msg.IsCommand() {
		ev.Command = msg.Command()
	}
	if reply := msg.ReplyToMessage; reply != nil {
		ev.ReplyTo = &moderation.Reply{MessageID: reply.MessageID}
		if reply.From != nil {
			from := toUser(reply.From)
			ev.ReplyTo.From = &from
		}
	}
	return ev
}

func countLinks(entities []api.MessageEntity) int {
	count := 0
	for _, entity := range entities {
		if entity.Type == "url" || entity.Type == "text_link" {
			count++
		}
	}
	return count
}

func attachmentKind(msg *api.Message) moderation.AttachmentKind {
	switch bot.GetMessageType(msg) {
	case bot.MessageTypePhoto:
		return moderation.AttachmentPhoto
	case bot.MessageTypeVideo:
		return moderation.AttachmentVideo
	case bot.MessageTypeDocument:
		return moderation.AttachmentDocument
	case bot.MessageTypeAnimation:
		return moderation.AttachmentAnimation
	default:
		return moderation.AttachmentNone
	}
}
