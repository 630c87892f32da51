package moderation

import (
	"time"
)

type Limits struct {
	NewbieWindow     time.Duration
	FloodWindow      time.Duration
	FloodMaxMessages int
	MembersCapacity  int
}

func DefaultLimits() Limits {
	return Limits{
		NewbieWindow:     DefaultNewbieWindow,
		FloodWindow:      DefaultFloodWindow,
		FloodMaxMessages: DefaultFloodMaxMessages,
		MembersCapacity:  DefaultMembersCapacity,
	}
}

// Store owns all mutable per-member state of the moderation core.
type Store struct {
	members *Members
	flood   *FloodGuard
}

func NewStore(limits Limits) *Store {
	return &Store{
		members: NewMembers(limits.NewbieWindow, limits.MembersCapacity),
		flood:   NewFloodGuard(limits.FloodWindow, limits.FloodMaxMessages),
	}
}

// RecordJoin (re)starts the newcomer period and forgets earlier flood history.
func (s *Store) RecordJoin(key MemberKey, at time.Time) {
	s.flood.Reset(key)
	s.members.RecordJoin(key, at)
}

func (s *Store) IsNewcomer(key MemberKey, now time.Time) bool {
	return s.members.IsNewcomer(key, now)
}

func (s *Store) RecordAndCheck(key MemberKey, now time.Time) bool {
	return s.flood.RecordAndCheck(key, now)
}

func (s *Store) Sweep(now time.Time) int {
	return s.flood.Sweep(now)
}

type StoreStats struct {
	Members   int
	FloodLogs int
}

func (s *Store) Stats() StoreStats {
	return StoreStats{
		Members:   s.members.Len(),
		FloodLogs: s.flood.Len(),
	}
}
