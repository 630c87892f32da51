package permissions

import api "github.com/OvyFlash/telegram-bot-api"

// AdminSet is the static list of users allowed to run privileged commands.
// It is built once at startup and never mutated, so it needs no locking.
type AdminSet struct {
	ids map[int64]struct{}
}

func NewAdminSet(ids ...int64) AdminSet {
	set := AdminSet{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		if id != 0 {
			set.ids[id] = struct{}{}
		}
	}
	return set
}

func (s AdminSet) Contains(userID int64) bool {
	_, ok := s.ids[userID]
	return ok
}

func (s AdminSet) Len() int {
	return len(s.ids)
}

// IsAnonymousAdmin reports a message posted on behalf of the group itself,
// which the platform only allows for the group's administrators.
func IsAnonymousAdmin(msg *api.Message) bool {
	if msg == nil || msg.SenderChat == nil {
		return false
	}
	return msg.SenderChat.ID == msg.Chat.ID
}
