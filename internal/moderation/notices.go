package moderation

import (
	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/guardbot/internal/i18n"
)

const DefaultChatName = "Нейрокодер из Москвы"

const (
	keyWelcomeNotice = "👋 {{ .mention }}, welcome to the <b>«{{ .chat }}»</b> chat!\n\nPlease read the rules: /rules\nAnd the short onboarding: /welcome\n\nIt would be great if you briefly told us what you do and what you want to build with neural networks 🙂"
	keyFloodNotice   = "🧊 {{ .handle }}, no flooding.\nYou have just joined «{{ .chat }}»: read /rules and /welcome first, then ask one proper question instead of a wall of messages 🙂"
	keyMediaNotice   = "📎 Media from new members is temporarily disabled.\nGet to know the chat first, then share screenshots and files 🙂"
	keyLinkNotice    = "🔗 Links from new members are temporarily disabled.\nIf it is an important on-topic link, write to the admins."
	keySpamNotice    = "🚫 Message removed by the moderator bot.\nReason: looks like spam or advertising unrelated to the chat topic."
	keyWarnUsage     = "This command must be used as a reply to the violator's message."
	keyWarnNotice    = "⚠ {{ .mention }}, this is a warning for breaking the chat rules.\nRepeated violations may lead to restrictions or a ban."
	keyBanUsage      = "Use /ban as a reply to the message of the user you want to ban."
	keyBanDone       = "🔨 User {{ .mention }} has been banned."
	keyBanFailed     = "Could not ban the user. Check my administrator rights."
)

// Texts renders localized HTML notices for one community.
type Texts struct {
	Language string
	ChatName string
}

func (t Texts) Render(key string, vars map[string]any) string {
	data := map[string]any{
		"chat": api.EscapeText(api.ModeHTML, t.chatName()),
	}
	for k, v := range vars {
		data[k] = v
	}
	return tool.ExecTemplate(i18n.Get(key, t.Language), data)
}

func (t Texts) chatName() string {
	if t.ChatName == "" {
		return DefaultChatName
	}
	return t.ChatName
}

func noticeKey(reason Reason) string {
	switch reason {
	case ReasonNewcomerMedia:
		return keyMediaNotice
	case ReasonNewcomerLink:
		return keyLinkNotice
	case ReasonFlood:
		return keyFloodNotice
	case ReasonSpam:
		return keySpamNotice
	default:
		return ""
	}
}
