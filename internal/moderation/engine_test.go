package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iamwavecut/guardbot/internal/policy/permissions"
)

const (
	testChatID  = int64(-1001)
	testAdminID = int64(1)
)

var testJoinedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(actions Actions) *Engine {
	store := NewStore(DefaultLimits())
	classifier := NewClassifier(NewSubstringMatcher(DefaultBadKeywords), DefaultBadDomains)
	return NewEngine(store, classifier, actions, EngineConfig{
		Admins: permissions.NewAdminSet(testAdminID),
		Texts:  Texts{Language: "en", ChatName: "Test <Chat>"},
	})
}

func newcomer(e *Engine, userID int64) User {
	e.store.RecordJoin(MemberKey{ChatID: testChatID, UserID: userID}, testJoinedAt)
	return User{ID: userID, UserName: "newbie"}
}

func textMessage(id int, sender User, text string) MessageEvent {
	return MessageEvent{ChatID: testChatID, MessageID: id, Sender: sender, Text: text}
}

func TestEngineDecide(t *testing.T) {
	t.Parallel()

	established := User{ID: 500, UserName: "old"}
	tests := []struct {
		name       string
		newcomer   bool
		ev         func(u User) MessageEvent
		wantAction Action
		wantReason Reason
	}{
		{
			name:       "admin media is allowed",
			ev:         func(User) MessageEvent { return MessageEvent{ChatID: testChatID, Sender: User{ID: testAdminID}, Attachment: AttachmentPhoto} },
			wantAction: ActionAllow,
			wantReason: ReasonAdmin,
		},
		{
			name:       "admin spam is allowed",
			ev:         func(User) MessageEvent { return textMessage(1, User{ID: testAdminID}, "http://a.com http://b.com") },
			wantAction: ActionAllow,
			wantReason: ReasonAdmin,
		},
		{
			name:       "newcomer media",
			newcomer:   true,
			ev:         func(u User) MessageEvent { return MessageEvent{ChatID: testChatID, Sender: u, Attachment: AttachmentDocument} },
			wantAction: ActionDelete,
			wantReason: ReasonNewcomerMedia,
		},
		{
			name:       "newcomer link entity",
			newcomer:   true,
			ev:         func(u User) MessageEvent { ev := textMessage(1, u, "see example.com"); ev.LinkCount = 1; return ev },
			wantAction: ActionDelete,
			wantReason: ReasonNewcomerLink,
		},
		{
			name:       "newcomer code is allowed",
			newcomer:   true,
			ev:         func(u User) MessageEvent { return textMessage(1, u, "```\nprint(1)\n```") },
			wantAction: ActionAllow,
			wantReason: ReasonCode,
		},
		{
			name:       "established media is allowed",
			ev:         func(User) MessageEvent { return MessageEvent{ChatID: testChatID, Sender: established, Attachment: AttachmentVideo} },
			wantAction: ActionAllow,
			wantReason: ReasonClean,
		},
		{
			name:       "established single link is allowed",
			ev:         func(User) MessageEvent { ev := textMessage(1, established, "http://a.com"); ev.LinkCount = 1; return ev },
			wantAction: ActionAllow,
			wantReason: ReasonClean,
		},
		{
			name:       "established link spam",
			ev:         func(User) MessageEvent { return textMessage(1, established, "http://a.com http://b.com") },
			wantAction: ActionDelete,
			wantReason: ReasonSpam,
		},
		{
			name:       "established keyword spam",
			ev:         func(User) MessageEvent { return textMessage(1, established, "лучшие ставки на спорт тут") },
			wantAction: ActionDelete,
			wantReason: ReasonSpam,
		},
		{
			name:       "code exempts spam checks",
			ev:         func(User) MessageEvent { return textMessage(1, established, "```\nwget http://a.com http://b.com\n```") },
			wantAction: ActionAllow,
			wantReason: ReasonCode,
		},
		{
			name:       "missing sender",
			ev:         func(User) MessageEvent { return textMessage(1, User{}, "bit.ly/spam") },
			wantAction: ActionAllow,
			wantReason: ReasonNoSender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(&actionsRecorder{})
			user := User{ID: 42, UserName: "newbie"}
			if tt.newcomer {
				user = newcomer(e, 42)
			}
			got := e.Decide(tt.ev(user), testJoinedAt.Add(time.Second))
			if got.Action != tt.wantAction || got.Reason != tt.wantReason {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantAction, tt.wantReason, got.Action, got.Reason)
			}
		})
	}
}

func TestEngineAdminHintRequiresTrust(t *testing.T) {
	t.Parallel()

	ev := textMessage(1, User{ID: 900}, "http://a.com http://b.com")
	ev.IsAdminHint = true

	e := newTestEngine(&actionsRecorder{})
	if got := e.Decide(ev, time.Now()); got.Reason != ReasonSpam {
		t.Fatalf("expected hint to be ignored, got %s", got.Reason)
	}

	e.config.TrustAdminHint = true
	if got := e.Decide(ev, time.Now()); got.Reason != ReasonAdmin {
		t.Fatalf("expected trusted hint to exempt sender, got %s", got.Reason)
	}
}

func TestEngineNewcomerPhotoIsDeleted(t *testing.T) {
	t.Parallel()

	actions := &actionsRecorder{}
	e := newTestEngine(actions)
	user := newcomer(e, 42)
	e.now = func() time.Time { return testJoinedAt.Add(10 * time.Second) }

	decision := e.Moderate(context.Background(), MessageEvent{
		ChatID:     testChatID,
		MessageID:  10,
		Sender:     user,
		Attachment: AttachmentPhoto,
	})

	if decision.Reason != ReasonNewcomerMedia {
		t.Fatalf("expected newcomer media decision, got %s", decision.Reason)
	}
	if len(actions.deleted) != 1 || actions.deleted[0] != 10 {
		t.Fatalf("expected message 10 deleted, got %v", actions.deleted)
	}
	if len(actions.sent) != 1 || !strings.Contains(actions.sent[0].text, "Media from new members") {
		t.Fatalf("expected one media notice, got %+v", actions.sent)
	}
	if len(actions.banned) != 0 {
		t.Fatalf("expected no ban, got %v", actions.banned)
	}
}

func TestEngineNewcomerFloodIsDeletedOnFourthMessage(t *testing.T) {
	t.Parallel()

	actions := &actionsRecorder{}
	e := newTestEngine(actions)
	user := newcomer(e, 42)

	for i, offset := range []time.Duration{0, 5 * time.Second, 10 * time.Second, 15 * time.Second} {
		at := testJoinedAt.Add(offset)
		e.now = func() time.Time { return at }
		decision := e.Moderate(context.Background(), textMessage(100+i, user, "привет"))

		wantDeleted := i == 3
		if decision.Deleted() != wantDeleted {
			t.Fatalf("message %d: expected deleted=%v, got %+v", i+1, wantDeleted, decision)
		}
	}

	if len(actions.deleted) != 1 || actions.deleted[0] != 103 {
		t.Fatalf("expected only the fourth message deleted, got %v", actions.deleted)
	}
	if len(actions.sent) != 1 || !strings.Contains(actions.sent[0].text, "@newbie, no flooding") {
		t.Fatalf("expected flood notice naming the user, got %+v", actions.sent)
	}
	if strings.Contains(actions.sent[0].text, "<Chat>") {
		t.Fatalf("expected escaped chat name in notice, got %q", actions.sent[0].text)
	}
}

func TestEngineFloodStopsAfterNewcomerWindow(t *testing.T) {
	t.Parallel()

	actions := &actionsRecorder{}
	e := newTestEngine(actions)
	user := newcomer(e, 42)

	for i := 0; i < 6; i++ {
		at := testJoinedAt.Add(time.Minute + time.Duration(i)*time.Second)
		e.now = func() time.Time { return at }
		if decision := e.Moderate(context.Background(), textMessage(i, user, "привет")); decision.Deleted() {
			t.Fatalf("message %d: expected established member to be allowed", i+1)
		}
	}
	if len(actions.deleted) != 0 {
		t.Fatalf("expected no deletions, got %v", actions.deleted)
	}
}

func TestEngineSwallowsActionFailures(t *testing.T) {
	t.Parallel()

	failure := errors.New("Bad Request: message to delete not found")
	actions := &actionsRecorder{deleteErr: failure, sendErr: failure}
	e := newTestEngine(actions)

	decision := e.Moderate(context.Background(), textMessage(5, User{ID: 77}, "http://a.com http://b.com"))
	if !decision.Deleted() {
		t.Fatalf("expected delete decision, got %+v", decision)
	}
	if len(actions.deleted) != 1 {
		t.Fatalf("expected delete attempted, got %v", actions.deleted)
	}

	next := e.Moderate(context.Background(), textMessage(6, User{ID: 77}, "hello"))
	if next.Deleted() {
		t.Fatalf("expected following message to be processed normally, got %+v", next)
	}
}

func TestEngineNoticeAfterFailedDelete(t *testing.T) {
	t.Parallel()

	failure := errors.New("Bad Request: message can't be deleted")
	tests := []struct {
		name       string
		ev         func(e *Engine) MessageEvent
		wantReason Reason
		wantNotice bool
	}{
		{
			name:       "spam notice is skipped",
			ev:         func(*Engine) MessageEvent { return textMessage(1, User{ID: 77}, "http://a.com http://b.com") },
			wantReason: ReasonSpam,
		},
		{
			name: "media notice is skipped",
			ev: func(e *Engine) MessageEvent {
				return MessageEvent{ChatID: testChatID, MessageID: 1, Sender: newcomer(e, 42), Attachment: AttachmentPhoto}
			},
			wantReason: ReasonNewcomerMedia,
		},
		{
			name: "link notice is skipped",
			ev: func(e *Engine) MessageEvent {
				ev := textMessage(1, newcomer(e, 42), "see example.com")
				ev.LinkCount = 1
				return ev
			},
			wantReason: ReasonNewcomerLink,
		},
		{
			name: "flood warning is still sent",
			ev: func(e *Engine) MessageEvent {
				user := newcomer(e, 42)
				key := MemberKey{ChatID: testChatID, UserID: user.ID}
				for i := 0; i < DefaultFloodMaxMessages; i++ {
					e.store.RecordAndCheck(key, testJoinedAt.Add(time.Second))
				}
				return textMessage(1, user, "привет")
			},
			wantReason: ReasonFlood,
			wantNotice: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			actions := &actionsRecorder{deleteErr: failure}
			e := newTestEngine(actions)
			e.now = func() time.Time { return testJoinedAt.Add(2 * time.Second) }

			decision := e.Moderate(context.Background(), tt.ev(e))
			if decision.Reason != tt.wantReason {
				t.Fatalf("expected %s, got %+v", tt.wantReason, decision)
			}
			if len(actions.deleted) != 1 {
				t.Fatalf("expected delete attempted, got %v", actions.deleted)
			}
			if gotNotice := len(actions.sent) == 1; gotNotice != tt.wantNotice {
				t.Fatalf("expected notice=%v, got %+v", tt.wantNotice, actions.sent)
			}
		})
	}
}

func TestEngineNewcomerLinkCountsTowardsFlood(t *testing.T) {
	t.Parallel()

	actions := &actionsRecorder{}
	e := newTestEngine(actions)
	user := newcomer(e, 42)

	linked := textMessage(100, user, "see http://a.com")
	linked.LinkCount = 1
	messages := []MessageEvent{
		linked,
		textMessage(101, user, "hello"),
		textMessage(102, user, "hello"),
		textMessage(103, user, "hello"),
	}
	want := []Reason{ReasonNewcomerLink, ReasonClean, ReasonClean, ReasonFlood}

	for i, ev := range messages {
		at := testJoinedAt.Add(time.Duration(i+1) * time.Second)
		e.now = func() time.Time { return at }
		if got := e.Moderate(context.Background(), ev); got.Reason != want[i] {
			t.Fatalf("message %d: expected %s, got %+v", i+1, want[i], got)
		}
	}
	if len(actions.deleted) != 2 || actions.deleted[0] != 100 || actions.deleted[1] != 103 {
		t.Fatalf("expected link and fourth message deleted, got %v", actions.deleted)
	}
}

func TestUserHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "username", user: User{ID: 12345, UserName: "ann"}, want: "@ann"},
		{name: "numeric id", user: User{ID: 12345}, want: "@12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.user.Handle(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEngineOnJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ev          MemberEvent
		wantJoin    bool
		wantWelcome bool
	}{
		{
			name:        "left to member",
			ev:          MemberEvent{ChatID: testChatID, User: User{ID: 42, FullName: "Ann <B>"}, PreviousStatus: StatusLeft, NewStatus: StatusMember},
			wantJoin:    true,
			wantWelcome: true,
		},
		{
			name:        "kicked to member",
			ev:          MemberEvent{ChatID: testChatID, User: User{ID: 42}, PreviousStatus: StatusKicked, NewStatus: StatusMember},
			wantJoin:    true,
			wantWelcome: true,
		},
		{
			name:        "bot joins quietly",
			ev:          MemberEvent{ChatID: testChatID, User: User{ID: 42, IsBot: true}, PreviousStatus: StatusLeft, NewStatus: StatusMember},
			wantJoin:    true,
			wantWelcome: false,
		},
		{
			name:     "promotion is not a join",
			ev:       MemberEvent{ChatID: testChatID, User: User{ID: 42}, PreviousStatus: StatusMember, NewStatus: "administrator"},
			wantJoin: false,
		},
		{
			name:     "leaving is not a join",
			ev:       MemberEvent{ChatID: testChatID, User: User{ID: 42}, PreviousStatus: StatusMember, NewStatus: StatusLeft},
			wantJoin: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			actions := &actionsRecorder{}
			e := newTestEngine(actions)
			e.now = func() time.Time { return testJoinedAt }

			if got := e.OnJoin(context.Background(), tt.ev); got != tt.wantJoin {
				t.Fatalf("expected join=%v, got %v", tt.wantJoin, got)
			}
			key := MemberKey{ChatID: testChatID, UserID: tt.ev.User.ID}
			if got := e.store.IsNewcomer(key, testJoinedAt.Add(time.Second)); got != tt.wantJoin {
				t.Fatalf("expected newcomer=%v, got %v", tt.wantJoin, got)
			}
			if gotWelcome := len(actions.sent) == 1; gotWelcome != tt.wantWelcome {
				t.Fatalf("expected welcome=%v, got %+v", tt.wantWelcome, actions.sent)
			}
			if tt.wantWelcome && strings.Contains(actions.sent[0].text, "<B>") {
				t.Fatalf("expected escaped user name, got %q", actions.sent[0].text)
			}
		})
	}
}
