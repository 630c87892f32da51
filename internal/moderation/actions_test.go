package moderation

import (
	"context"
	"sync"
)

type sentMessage struct {
	chatID  int64
	text    string
	replyTo int
}

type actionsRecorder struct {
	mu      sync.Mutex
	deleted []int
	sent    []sentMessage
	banned  []int64

	deleteErr error
	sendErr   error
	banErr    error
}

func (r *actionsRecorder) DeleteMessage(_ context.Context, _ int64, messageID int) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, messageID)
	return Result{MessageID: messageID, Err: r.deleteErr}
}

func (r *actionsRecorder) SendMessage(_ context.Context, chatID int64, text string, replyTo int) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text, replyTo: replyTo})
	return Result{MessageID: len(r.sent), Err: r.sendErr}
}

func (r *actionsRecorder) BanMember(_ context.Context, _ int64, userID int64) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banned = append(r.banned, userID)
	return Result{Err: r.banErr}
}
