// Package proxy manages a rotating pool of outbound proxy identities with
// failure tracking. Proxies are a best-effort reliability aid: an empty or
// exhausted pool means callers proceed with a direct connection.
package proxy

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is one proxy identity and its health state. Records are owned
// exclusively by Source; callers only ever see copies.
type Record struct {
	Identity            string
	ConsecutiveFailures int
	Disabled            bool

	disabledAt time.Time
}

// Source selects proxies round-robin over currently enabled records and
// retires records that keep failing. All mutation happens under one mutex.
type Source struct {
	mu        sync.Mutex
	records   []*Record
	next      int
	threshold int
	recovery  time.Duration
}

// NewSource creates a Source from proxy identities. threshold is the number
// of consecutive failures that disables a record; recovery, when non-zero,
// re-enables a disabled record after that much time has passed.
func NewSource(identities []string, threshold int, recovery time.Duration) *Source {
	if threshold <= 0 {
		threshold = 3
	}
	records := make([]*Record, 0, len(identities))
	for _, id := range identities {
		if id == "" {
			continue
		}
		records = append(records, &Record{Identity: id})
	}
	return &Source{records: records, threshold: threshold, recovery: recovery}
}

// Acquire returns the next enabled proxy identity in round-robin order.
// The second return is false when no proxy is available; callers interpret
// that as "proceed without proxy", not as an error.
func (s *Source) Acquire() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return "", false
	}

	now := time.Now()
	for range s.records {
		rec := s.records[s.next]
		s.next = (s.next + 1) % len(s.records)

		if rec.Disabled && s.recovery > 0 && now.Sub(rec.disabledAt) >= s.recovery {
			rec.Disabled = false
			rec.ConsecutiveFailures = 0
			zap.L().Info("proxy: record re-enabled", zap.String("identity", rec.Identity))
		}
		if !rec.Disabled {
			return rec.Identity, true
		}
	}

	return "", false
}

// ReportOutcome records the result of an attempt through the given identity.
// A success resets the failure count; reaching the failure threshold disables
// the record.
func (s *Source) ReportOutcome(identity string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Identity != identity {
			continue
		}
		if success {
			rec.ConsecutiveFailures = 0
			return
		}
		rec.ConsecutiveFailures++
		if !rec.Disabled && rec.ConsecutiveFailures >= s.threshold {
			rec.Disabled = true
			rec.disabledAt = time.Now()
			zap.L().Warn("proxy: record disabled after consecutive failures",
				zap.String("identity", rec.Identity),
				zap.Int("failures", rec.ConsecutiveFailures),
			)
		}
		return
	}
}

// EnabledCount returns how many records are currently enabled.
func (s *Source) EnabledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, rec := range s.records {
		if !rec.Disabled {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the current record states, for status reporting.
func (s *Source) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = *rec
	}
	return out
}
