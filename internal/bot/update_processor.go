package bot

import (
	"context"
	"net/http"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	gerrors "github.com/iamwavecut/guardbot/internal/errors"
)

const (
	UpdateTimeout = 5 * time.Minute
	RetryDelay    = 3 * time.Second
)

var AllowedUpdates = []string{"message", "chat_member", "my_chat_member"}

type (
	UpdateProcessor struct {
		updateHandlers []Handler
	}

	MessageType string
)

const (
	MessageTypeText      MessageType = "text"
	MessageTypeAnimation MessageType = "animation"
	MessageTypeAudio     MessageType = "audio"
	MessageTypeDocument  MessageType = "document"
	MessageTypePhoto     MessageType = "photo"
	MessageTypeSticker   MessageType = "sticker"
	MessageTypeVideo     MessageType = "video"
	MessageTypeVideoNote MessageType = "video_note"
	MessageTypeVoice     MessageType = "voice"
	MessageTypeOther     MessageType = "other"
)

func NewUpdateProcessor(handlers ...Handler) *UpdateProcessor {
	enabled := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h == nil {
			continue
		}
		enabled = append(enabled, h)
	}
	return &UpdateProcessor{updateHandlers: enabled}
}

func (up *UpdateProcessor) Process(ctx context.Context, u *api.Update) error {
	if u == nil {
		return gerrors.ErrNilUpdate
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	updateTime := time.Now()
	switch {
	case u.Message != nil:
		updateTime = time.Unix(int64(u.Message.Date), 0)
	case u.ChatMember != nil:
		updateTime = time.Unix(int64(u.ChatMember.Date), 0)
	}
	if time.Since(updateTime) > UpdateTimeout {
		log.WithFields(log.Fields{
			"update_id":   u.UpdateID,
			"update_time": updateTime,
			"age":         time.Since(updateTime),
		}).Debug("skipping outdated update")
		return nil
	}

	chat := u.FromChat()
	if chat == nil {
		switch {
		case u.MyChatMember != nil:
			chat = &u.MyChatMember.Chat
		case u.ChatMember != nil:
			chat = &u.ChatMember.Chat
		}
	}

	user := u.SentFrom()
	if user == nil {
		switch {
		case u.MyChatMember != nil:
			user = &u.MyChatMember.From
		case u.ChatMember != nil:
			user = &u.ChatMember.From
		}
	}

	for _, handler := range up.updateHandlers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		proceed, err := handler.Handle(ctx, u, chat, user)
		if err != nil {
			return errors.WithMessage(err, "handling error")
		}
		if !proceed {
			log.Trace("not proceeding")
			return nil
		}
	}
	return nil
}

// GetUpdatesChans long-polls updates until ctx is done. Transient errors are
// retried after RetryDelay; a rejected token is reported on the error channel
// and ends polling.
func GetUpdatesChans(ctx context.Context, bot *api.BotAPI, config api.UpdateConfig) (api.UpdatesChannel, chan error) {
	ch := make(chan api.Update, bot.Buffer)
	chErr := make(chan error, 1)

	go func() {
		defer close(ch)
		defer close(chErr)
		entry := log.WithField("object", "GetUpdatesChans")
		for {
			select {
			case <-ctx.Done():
				chErr <- ctx.Err()
				return
			default:
			}

			updates, err := bot.GetUpdates(config)
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
					chErr <- errors.Wrap(err, "bot token rejected")
					return
				}
				entry.WithField("error", err.Error()).Warn("cant get updates, retrying")
				select {
				case <-time.After(RetryDelay):
				case <-ctx.Done():
					chErr <- ctx.Err()
					return
				}
				continue
			}

			for _, update := range updates {
				if update.UpdateID < config.Offset {
					continue
				}
				config.Offset = update.UpdateID + 1
				select {
				case ch <- update:
				case <-ctx.Done():
					chErr <- ctx.Err()
					return
				}
			}
		}
	}()

	return ch, chErr
}

func GetFullName(user *api.User) string {
	if user == nil {
		return ""
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

func GetMessageType(msg *api.Message) MessageType {
	switch {
	case msg == nil:
		return MessageTypeOther
	case msg.Animation != nil:
		return MessageTypeAnimation
	case msg.Audio != nil:
		return MessageTypeAudio
	case msg.Document != nil:
		return MessageTypeDocument
	case len(msg.Photo) > 0:
		return MessageTypePhoto
	case msg.Sticker != nil:
		return MessageTypeSticker
	case msg.Video != nil:
		return MessageTypeVideo
	case msg.VideoNote != nil:
		return MessageTypeVideoNote
	case msg.Voice != nil:
		return MessageTypeVoice
	case msg.Text != "":
		return MessageTypeText
	default:
		return MessageTypeOther
	}
}

func IsGroup(chat *api.Chat) bool {
	return chat != nil && (chat.Type == "group" || chat.Type == "supergroup")
}
