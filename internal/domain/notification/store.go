// Package notification holds the practice notification inbox: the canonical
// list of notifications, the active list filters, the statistics derived from
// the list, and the synthetic generator that simulates live events.
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store owns the canonical notification list and the active filters.
// Every operation is synchronous and total: unknown ids are ignored rather
// than reported. Callers only ever receive copies of the internal state.
type Store struct {
	mu        sync.RWMutex
	canonical []Notification // newest first
	filters   Filters

	now    func() time.Time
	newID  func() string
	logger zerolog.Logger

	lifecycle sync.Mutex
	gen       *Generator
	closed    bool
}

// NewStore creates a store whose canonical list starts as a copy of seed.
// Entries with a duplicate id are dropped; the first occurrence wins.
func NewStore(logger zerolog.Logger, seed []Notification) *Store {
	s := &Store{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
	s.canonical = s.dedupe(seed)
	return s
}

// List returns the canonical list with the active filters applied, newest
// first.
func (s *Store) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.filters.IsZero()
	out := make([]Notification, 0, len(s.canonical))
	for _, n := range s.canonical {
		if all || s.filters.Matches(n) {
			out = append(out, n.clone())
		}
	}
	return out
}

// Stats derives the aggregate counts from the full canonical list.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.canonical)
}

// Filters returns the active filters.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.clone()
}

// SetFilters replaces the active filters wholesale. Callers wanting to change
// a single field merge it into the current value first.
func (s *Store) SetFilters(f Filters) {
	f = f.clone()
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}

// Get returns the notification with the given id, ignoring filters.
func (s *Store) Get(id string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.canonical[i].clone(), true
	}
	return Notification{}, false
}

// MarkAsRead flags the notification as read. Unknown ids are ignored.
func (s *Store) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.canonical[i].IsRead = true
	}
}

// MarkAllAsRead flags every notification as read.
func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.canonical {
		s.canonical[i].IsRead = true
	}
}

// DeleteNotification removes the notification. Unknown ids are ignored.
func (s *Store) DeleteNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.canonical = append(s.canonical[:i:i], s.canonical[i+1:]...)
}

// ClearAllNotifications empties the canonical list. Filters are kept.
func (s *Store) ClearAllNotifications() {
	s.mu.Lock()
	s.canonical = nil
	s.mu.Unlock()
}

// AddNotification assigns a fresh id and the current time to in and puts the
// result at the front of the list.
func (s *Store) AddNotification(in NewNotification) Notification {
	n := Notification{
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		IsRead:         in.IsRead,
		Priority:       in.Priority,
		Category:       in.Category,
		ActionRequired: in.ActionRequired,
		PatientID:      in.PatientID,
		PatientName:    in.PatientName,
		Service:        in.Service,
		ExpiresAt:      in.ExpiresAt,
	}
	n = n.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.newID()
	for s.indexOf(n.ID) >= 0 {
		n.ID = s.newID()
	}
	n.Timestamp = s.now()

	s.canonical = append([]Notification{n}, s.canonical...)
	return n.clone()
}

// Snapshot returns an unfiltered copy of the canonical list in display order.
func (s *Store) Snapshot() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.canonical))
	for i, n := range s.canonical {
		out[i] = n.clone()
	}
	return out
}

// Restore replaces the canonical list, typically with a previously saved
// Snapshot. Filters are left untouched.
func (s *Store) Restore(items []Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canonical = s.dedupe(items)
}

// dedupe copies items, dropping repeated ids and giving id-less entries a
// fresh one.
func (s *Store) dedupe(items []Notification) []Notification {
	seen := make(map[string]struct{}, len(items))
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		if n.ID == "" {
			n.ID = s.newID()
		}
		if _, dup := seen[n.ID]; dup {
			s.logger.Warn().Str("id", n.ID).Msg("dropping duplicate notification id")
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n.clone())
	}
	return out
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.canonical {
		if s.canonical[i].ID == id {
			return i
		}
	}
	return -1
}
