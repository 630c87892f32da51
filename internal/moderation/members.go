package moderation

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultNewbieWindow    = 60 * time.Second
	DefaultMembersCapacity = 100000

	// Records outlive the window a little so that a check made with a slightly
	// stale clock still sees them.
	membersTTLGrace = 10 * time.Second
)

// Members remembers when each user joined a chat. Entries are evicted by TTL
// and capacity, the newcomer predicate itself only looks at the timestamp.
type Members struct {
	window  time.Duration
	records *expirable.LRU[MemberKey, time.Time]
}

func NewMembers(window time.Duration, capacity int) *Members {
	if window <= 0 {
		window = DefaultNewbieWindow
	}
	if capacity <= 0 {
		capacity = DefaultMembersCapacity
	}
	return &Members{
		window:  window,
		records: expirable.NewLRU[MemberKey, time.Time](capacity, nil, window+membersTTLGrace),
	}
}

func (m *Members) RecordJoin(key MemberKey, at time.Time) {
	m.records.Add(key, at)
}

func (m *Members) IsNewcomer(key MemberKey, now time.Time) bool {
	joinedAt, ok := m.records.Peek(key)
	if !ok {
		return false
	}
	if now.Before(joinedAt) {
		return false
	}
	return now.Sub(joinedAt) < m.window
}

func (m *Members) Len() int {
	return m.records.Len()
}
