package moderation

import (
	"context"
	"fmt"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
)

const (
	StatusMember = "member"
	StatusLeft   = "left"
	StatusKicked = "kicked"
)

type AttachmentKind string

const (
	AttachmentNone      AttachmentKind = ""
	AttachmentPhoto     AttachmentKind = "photo"
	AttachmentVideo     AttachmentKind = "video"
	AttachmentDocument  AttachmentKind = "document"
	AttachmentAnimation AttachmentKind = "animation"
)

// MemberKey scopes all per-user state to a single chat.
type MemberKey struct {
	ChatID int64
	UserID int64
}

type User struct {
	ID       int64
	UserName string
	FullName string
	IsBot    bool
}

// Handle is the short name used in plain-text notices: @username, or @id when
// the user has no username.
func (u User) Handle() string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return fmt.Sprintf("@%d", u.ID)
}

// Mention renders an HTML link to the user profile.
func (u User) Mention() string {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = fmt.Sprintf("%d", u.ID)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, api.EscapeText(api.ModeHTML, name))
}

type (
	MemberEvent struct {
		ChatID         int64
		User           User
		PreviousStatus string
		NewStatus      string
	}

	MessageEvent struct {
		ChatID      int64
		MessageID   int
		Sender      User
		IsAdminHint bool
		Text        string
		LinkCount   int
		Attachment  AttachmentKind
		Command     string
		ReplyTo     *Reply
	}

	Reply struct {
		MessageID int
		From      *User
	}
)

// IsJoin reports a transition into membership from outside the chat.
func (e MemberEvent) IsJoin() bool {
	return (e.PreviousStatus == StatusLeft || e.PreviousStatus == StatusKicked) && e.NewStatus == StatusMember
}

func (e MessageEvent) Key() MemberKey {
	return MemberKey{ChatID: e.ChatID, UserID: e.Sender.ID}
}

func (e MessageEvent) IsPlainText() bool {
	return e.Attachment == AttachmentNone && e.Text != ""
}

type Action string

const (
	ActionAllow  Action = "allow"
	ActionDelete Action = "delete"
)

type Reason string

const (
	ReasonAdmin         Reason = "admin"
	ReasonNewcomerMedia Reason = "newcomer_media"
	ReasonNewcomerLink  Reason = "newcomer_link"
	ReasonFlood         Reason = "flood"
	ReasonCode          Reason = "code"
	ReasonSpam          Reason = "spam"
	ReasonClean         Reason = "clean"
	ReasonNoSender      Reason = "no_sender"
)

type Decision struct {
	Action         Action
	Reason         Reason
	Classification Classification
}

func (d Decision) Deleted() bool {
	return d.Action == ActionDelete
}

// Result is the outcome of a single outbound call. A failed Result is logged
// by the caller and never aborts processing.
type Result struct {
	MessageID int
	Err       error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Actions is the outbound side of the messaging platform.
type Actions interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) Result
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int) Result
	BanMember(ctx context.Context, chatID int64, userID int64) Result
}
