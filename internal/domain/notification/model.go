package notification

import (
	"time"
)

// Type is the severity/visual classification of a notification.
type Type string

const (
	TypeUrgent  Type = "urgent"
	TypeAlert   Type = "alert"
	TypeWarning Type = "warning"
	TypeSuccess Type = "success"
	TypeInfo    Type = "info"
)

// Priority ranks how soon a notification needs attention.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Category groups notifications by the area of the practice they concern.
type Category string

const (
	CategoryMedical        Category = "medical"
	CategoryAdministrative Category = "administrative"
	CategorySystem         Category = "system"
	CategorySecurity       Category = "security"
)

// Notification is a single inbox entry. Everything except IsRead is fixed
// once the notification has been created.
type Notification struct {
	ID             string     `json:"id"`
	Type           Type       `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Timestamp      time.Time  `json:"timestamp"`
	IsRead         bool       `json:"isRead"`
	Priority       Priority   `json:"priority"`
	Category       Category   `json:"category"`
	ActionRequired bool       `json:"actionRequired,omitempty"`
	PatientID      string     `json:"patientId,omitempty"`
	PatientName    string     `json:"patientName,omitempty"`
	Service        string     `json:"service,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// clone returns a copy that shares no pointers with n.
func (n Notification) clone() Notification {
	if n.ExpiresAt != nil {
		exp := *n.ExpiresAt
		n.ExpiresAt = &exp
	}
	return n
}

// NewNotification is the caller-supplied part of a notification: everything
// except the ID and Timestamp, which the store assigns.
type NewNotification struct {
	Type           Type
	Title          string
	Message        string
	IsRead         bool
	Priority       Priority
	Category       Category
	ActionRequired bool
	PatientID      string
	PatientName    string
	Service        string
	ExpiresAt      *time.Time
}

// Filters narrows the list view. A nil field imposes no constraint; set
// fields are combined with AND.
type Filters struct {
	Type     *Type      `json:"type,omitempty"`
	Category *Category  `json:"category,omitempty"`
	Priority *Priority  `json:"priority,omitempty"`
	IsRead   *bool      `json:"isRead,omitempty"`
	Service  *string    `json:"service,omitempty"`
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`
}

// Matches reports whether n passes every set field of f.
func (f Filters) Matches(n Notification) bool {
	if f.Type != nil && n.Type != *f.Type {
		return false
	}
	if f.Category != nil && n.Category != *f.Category {
		return false
	}
	if f.Priority != nil && n.Priority != *f.Priority {
		return false
	}
	if f.IsRead != nil && n.IsRead != *f.IsRead {
		return false
	}
	if f.Service != nil && n.Service != *f.Service {
		return false
	}
	if f.DateFrom != nil && n.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && n.Timestamp.After(*f.DateTo) {
		return false
	}
	return true
}

// IsZero reports whether no field is set.
func (f Filters) IsZero() bool {
	return f.Type == nil && f.Category == nil && f.Priority == nil &&
		f.IsRead == nil && f.Service == nil && f.DateFrom == nil && f.DateTo == nil
}

func (f Filters) clone() Filters {
	out := Filters{}
	if f.Type != nil {
		v := *f.Type
		out.Type = &v
	}
	if f.Category != nil {
		v := *f.Category
		out.Category = &v
	}
	if f.Priority != nil {
		v := *f.Priority
		out.Priority = &v
	}
	if f.IsRead != nil {
		v := *f.IsRead
		out.IsRead = &v
	}
	if f.Service != nil {
		v := *f.Service
		out.Service = &v
	}
	if f.DateFrom != nil {
		v := *f.DateFrom
		out.DateFrom = &v
	}
	if f.DateTo != nil {
		v := *f.DateTo
		out.DateTo = &v
	}
	return out
}

// Stats are aggregate counts over the whole canonical list, regardless of
// the active filters.
type Stats struct {
	Total          int              `json:"total"`
	Unread         int              `json:"unread"`
	Critical       int              `json:"critical"`
	ActionRequired int              `json:"actionRequired"`
	ByCategory     map[Category]int `json:"byCategory"`
	ByPriority     map[Priority]int `json:"byPriority"`
}

// ComputeStats derives Stats from items. Critical and ActionRequired only
// count unread entries; the per-category and per-priority breakdowns count
// everything.
func ComputeStats(items []Notification) Stats {
	s := Stats{
		Total:      len(items),
		ByCategory: make(map[Category]int),
		ByPriority: make(map[Priority]int),
	}
	for _, n := range items {
		s.ByCategory[n.Category]++
		s.ByPriority[n.Priority]++
		if n.IsRead {
			continue
		}
		s.Unread++
		if n.Priority == PriorityCritical {
			s.Critical++
		}
		if n.ActionRequired {
			s.ActionRequired++
		}
	}
	return s
}
