package moderation

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/iamwavecut/guardbot/internal/observability"
	"github.com/iamwavecut/guardbot/internal/policy/permissions"
)

const tracerName = "github.com/iamwavecut/guardbot/internal/moderation"

type EngineConfig struct {
	Admins permissions.AdminSet
	// TrustAdminHint exempts senders flagged as chat admins by the platform
	// even when they are not in Admins.
	TrustAdminHint bool
	Texts          Texts
}

// Engine applies the moderation policy to inbound events.
type Engine struct {
	store      *Store
	classifier *Classifier
	actions    Actions
	config     EngineConfig
	now        func() time.Time
}

func NewEngine(store *Store, classifier *Classifier, actions Actions, config EngineConfig) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		actions:    actions,
		config:     config,
		now:        time.Now,
	}
}

func (e *Engine) isAdmin(ev MessageEvent) bool {
	if e.config.Admins.Contains(ev.Sender.ID) {
		return true
	}
	return e.config.TrustAdminHint && ev.IsAdminHint
}

// Decide evaluates the policy table for one message, first match wins. It
// updates the flood log of newcomers but performs no outbound calls.
func (e *Engine) Decide(ev MessageEvent, now time.Time) Decision {
	if ev.Sender.ID == 0 {
		return Decision{Action: ActionAllow, Reason: ReasonNoSender}
	}
	if e.isAdmin(ev) {
		return Decision{Action: ActionAllow, Reason: ReasonAdmin}
	}

	key := ev.Key()
	if e.store.IsNewcomer(key, now) {
		// Every newcomer text counts towards the flood log, including the
		// ones removed below for carrying a link.
		flooded := ev.IsPlainText() && e.store.RecordAndCheck(key, now)
		if ev.Attachment != AttachmentNone {
			return Decision{Action: ActionDelete, Reason: ReasonNewcomerMedia, Classification: ClassMedia}
		}
		if ev.LinkCount > 0 {
			return Decision{Action: ActionDelete, Reason: ReasonNewcomerLink, Classification: ClassLink}
		}
		if flooded {
			return Decision{Action: ActionDelete, Reason: ReasonFlood, Classification: e.classifier.Classify(ev)}
		}
	}

	if !ev.IsPlainText() {
		return Decision{Action: ActionAllow, Reason: ReasonClean, Classification: e.classifier.Classify(ev)}
	}

	class := e.classifier.Classify(ev)
	switch class {
	case ClassCode:
		return Decision{Action: ActionAllow, Reason: ReasonCode, Classification: class}
	case ClassLinkSpam, ClassKeywordSpam:
		return Decision{Action: ActionDelete, Reason: ReasonSpam, Classification: class}
	default:
		return Decision{Action: ActionAllow, Reason: ReasonClean, Classification: class}
	}
}

// Moderate decides and carries out the decision. Failed platform calls are
// logged and never returned.
func (e *Engine) Moderate(ctx context.Context, ev MessageEvent) Decision {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "moderate")
	defer span.End()

	decision := e.Decide(ev, e.now())
	span.SetAttributes(
		attribute.Int64("chat_id", ev.ChatID),
		attribute.Int64("user_id", ev.Sender.ID),
		attribute.String("action", string(decision.Action)),
		attribute.String("reason", string(decision.Reason)),
	)
	observability.RecordDecision(string(decision.Action), string(decision.Reason))

	entry := e.getLogEntry().WithFields(log.Fields{
		"method":     "Moderate",
		"chat_id":    ev.ChatID,
		"user_id":    ev.Sender.ID,
		"message_id": ev.MessageID,
		"reason":     decision.Reason,
	})
	if !decision.Deleted() {
		entry.Trace("message allowed")
		return decision
	}
	entry.WithField("classification", decision.Classification).Info("deleting message")

	if res := e.actions.DeleteMessage(ctx, ev.ChatID, ev.MessageID); !res.OK() {
		observability.RecordActionFailure("delete")
		entry.WithField("error", res.Err.Error()).Warn("failed to delete message")
		// The flood warning addresses the sender, the other notices claim
		// the message is gone.
		if decision.Reason != ReasonFlood {
			return decision
		}
	}

	notice := e.config.Texts.Render(noticeKey(decision.Reason), map[string]any{
		"handle":  ev.Sender.Handle(),
		"mention": ev.Sender.Mention(),
	})
	if res := e.actions.SendMessage(ctx, ev.ChatID, notice, 0); !res.OK() {
		observability.RecordActionFailure("send")
		entry.WithField("error", res.Err.Error()).Warn("failed to send notice")
	}
	return decision
}

// OnJoin starts the newcomer period for members entering the chat and greets
// them. Other membership transitions are ignored.
func (e *Engine) OnJoin(ctx context.Context, ev MemberEvent) bool {
	if !ev.IsJoin() || ev.User.ID == 0 {
		return false
	}
	entry := e.getLogEntry().WithFields(log.Fields{
		"method":  "OnJoin",
		"chat_id": ev.ChatID,
		"user_id": ev.User.ID,
	})

	e.store.RecordJoin(MemberKey{ChatID: ev.ChatID, UserID: ev.User.ID}, e.now())
	observability.RecordJoin()
	entry.Debug("recorded join")

	if ev.User.IsBot {
		return true
	}
	welcome := e.config.Texts.Render(keyWelcomeNotice, map[string]any{
		"mention": ev.User.Mention(),
	})
	if res := e.actions.SendMessage(ctx, ev.ChatID, welcome, 0); !res.OK() {
		observability.RecordActionFailure("send")
		entry.WithField("error", res.Err.Error()).Warn("failed to send welcome notice")
	}
	return true
}

func (e *Engine) getLogEntry() *log.Entry {
	return log.WithField("object", "Engine")
}
