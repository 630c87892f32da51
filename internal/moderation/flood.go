package moderation

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

const (
	DefaultFloodWindow      = 20 * time.Second
	DefaultFloodMaxMessages = 3
)

// FloodGuard keeps a sliding window of message timestamps per member.
// Every update of a single key runs inside xsync's per-key Compute, so bursts
// from one user are never undercounted and distinct users never contend.
type FloodGuard struct {
	window      time.Duration
	maxMessages int
	logs        *xsync.MapOf[MemberKey, []time.Time]
}

func NewFloodGuard(window time.Duration, maxMessages int) *FloodGuard {
	if window <= 0 {
		window = DefaultFloodWindow
	}
	if maxMessages <= 0 {
		maxMessages = DefaultFloodMaxMessages
	}
	return &FloodGuard{
		window:      window,
		maxMessages: maxMessages,
		logs:        xsync.NewMapOf[MemberKey, []time.Time](),
	}
}

// RecordAndCheck appends now to the member log, drops entries older than the
// window and reports whether the remaining count exceeds the limit.
func (f *FloodGuard) RecordAndCheck(key MemberKey, now time.Time) bool {
	var exceeded bool
	f.logs.Compute(key, func(old []time.Time, _ bool) ([]time.Time, bool) {
		kept := f.prune(old, now, len(old)+1)
		kept = append(kept, now)
		exceeded = len(kept) > f.maxMessages
		return kept, false
	})
	return exceeded
}

// count returns the number of in-window entries without recording anything.
func (f *FloodGuard) count(key MemberKey, now time.Time) int {
	var count int
	f.logs.Compute(key, func(old []time.Time, loaded bool) ([]time.Time, bool) {
		if !loaded {
			return nil, true
		}
		kept := f.prune(old, now, len(old))
		count = len(kept)
		return kept, len(kept) == 0
	})
	return count
}

func (f *FloodGuard) Reset(key MemberKey) {
	f.logs.Delete(key)
}

// Sweep removes logs that have no entry inside the window anymore.
func (f *FloodGuard) Sweep(now time.Time) int {
	var stale []MemberKey
	f.logs.Range(func(key MemberKey, entries []time.Time) bool {
		if len(entries) == 0 || now.Sub(entries[len(entries)-1]) > f.window {
			stale = append(stale, key)
		}
		return true
	})

	removed := 0
	for _, key := range stale {
		f.logs.Compute(key, func(old []time.Time, loaded bool) ([]time.Time, bool) {
			if !loaded {
				return nil, true
			}
			kept := f.prune(old, now, len(old))
			if len(kept) == 0 {
				removed++
				return nil, true
			}
			return kept, false
		})
	}
	return removed
}

func (f *FloodGuard) Len() int {
	return f.logs.Size()
}

// prune copies the in-window entries into a fresh slice; the stored slice may
// still be referenced by a concurrent Range.
func (f *FloodGuard) prune(entries []time.Time, now time.Time, capacity int) []time.Time {
	kept := make([]time.Time, 0, capacity)
	for _, t := range entries {
		if now.Sub(t) <= f.window {
			kept = append(kept, t)
		}
	}
	return kept
}
