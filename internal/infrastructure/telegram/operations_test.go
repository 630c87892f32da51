package telegram

import (
	"context"
	"errors"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"

	gerrors "github.com/iamwavecut/guardbot/internal/errors"
)

type requesterStub struct {
	requests []api.Chattable
	sent     []api.Chattable
	err      error
}

func (s *requesterStub) Request(c api.Chattable) (*api.APIResponse, error) {
	s.requests = append(s.requests, c)
	if s.err != nil {
		return nil, s.err
	}
	return &api.APIResponse{Ok: true}, nil
}

func (s *requesterStub) Send(c api.Chattable) (api.Message, error) {
	s.sent = append(s.sent, c)
	if s.err != nil {
		return api.Message{}, s.err
	}
	return api.Message{MessageID: 77}, nil
}

func TestOperationsSendMessageUsesHTMLAndReply(t *testing.T) {
	t.Parallel()

	stub := &requesterStub{}
	ops := NewOperations(stub)

	res := ops.SendMessage(context.Background(), -100, "<b>hi</b>", 5)
	if !res.OK() || res.MessageID != 77 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(stub.sent) != 1 {
		t.Fatalf("expected one sent message, got %d", len(stub.sent))
	}
	msg, ok := stub.sent[0].(api.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", stub.sent[0])
	}
	if msg.ParseMode != api.ModeHTML {
		t.Fatalf("unexpected parse mode %q", msg.ParseMode)
	}
	if msg.ReplyParameters.MessageID != 5 || !msg.ReplyParameters.AllowSendingWithoutReply {
		t.Fatalf("unexpected reply parameters: %+v", msg.ReplyParameters)
	}
}

func TestOperationsBanMemberReportsMissingRights(t *testing.T) {
	t.Parallel()

	stub := &requesterStub{err: errors.New("Bad Request: not enough rights to restrict/unrestrict chat member")}
	ops := NewOperations(stub)

	res := ops.BanMember(context.Background(), -100, 42)
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if !errors.Is(res.Err, gerrors.ErrNoPrivileges) {
		t.Fatalf("expected privilege error, got %v", res.Err)
	}
	cfg, ok := stub.requests[0].(api.BanChatMemberConfig)
	if !ok || cfg.UserID != 42 || cfg.ChatID != -100 {
		t.Fatalf("unexpected ban request: %#v", stub.requests[0])
	}
}

func TestOperationsSkipCancelledContext(t *testing.T) {
	t.Parallel()

	stub := &requesterStub{}
	ops := NewOperations(stub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if res := ops.DeleteMessage(ctx, -100, 1); res.OK() {
		t.Fatalf("expected cancelled context to fail the call")
	}
	if len(stub.requests) != 0 {
		t.Fatalf("expected no request, got %d", len(stub.requests))
	}
}
