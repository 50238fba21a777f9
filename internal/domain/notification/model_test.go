package notification

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFilters_Matches(t *testing.T) {
	n := Notification{
		ID:        "n1",
		Type:      TypeAlert,
		Priority:  PriorityHigh,
		Category:  CategoryMedical,
		Service:   "cardiology",
		Timestamp: baseTime,
	}
	before := baseTime.Add(-time.Hour)
	after := baseTime.Add(time.Hour)
	cat := CategorySecurity
	prio := PriorityHigh

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty", Filters{}, true},
		{"type match", Filters{Type: typePtr(TypeAlert)}, true},
		{"type mismatch", Filters{Type: typePtr(TypeInfo)}, false},
		{"category mismatch", Filters{Category: &cat}, false},
		{"priority match", Filters{Priority: &prio}, true},
		{"isRead false matches unread", Filters{IsRead: boolPtr(false)}, true},
		{"isRead true rejects unread", Filters{IsRead: boolPtr(true)}, false},
		{"service match", Filters{Service: strPtr("cardiology")}, true},
		{"service mismatch", Filters{Service: strPtr("billing")}, false},
		{"dateFrom before", Filters{DateFrom: &before}, true},
		{"dateFrom after", Filters{DateFrom: &after}, false},
		{"dateFrom equal is inclusive", Filters{DateFrom: &baseTime}, true},
		{"dateTo after", Filters{DateTo: &after}, true},
		{"dateTo before", Filters{DateTo: &before}, false},
		{"dateTo equal is inclusive", Filters{DateTo: &baseTime}, true},
		{"window", Filters{DateFrom: &before, DateTo: &after}, true},
		{"one failing field rejects", Filters{Type: typePtr(TypeAlert), Service: strPtr("billing")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(n); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilters_IsZero(t *testing.T) {
	if !(Filters{}).IsZero() {
		t.Error("expected empty filters to be zero")
	}
	if (Filters{IsRead: boolPtr(false)}).IsZero() {
		t.Error("isRead=false is a constraint, not an absent field")
	}
}

func TestComputeStats(t *testing.T) {
	items := []Notification{
		{ID: "1", Priority: PriorityCritical, Category: CategoryMedical, ActionRequired: true},
		{ID: "2", Priority: PriorityCritical, Category: CategoryMedical, ActionRequired: true, IsRead: true},
		{ID: "3", Priority: PriorityLow, Category: CategoryAdministrative},
		{ID: "4", Priority: PriorityMedium, Category: CategorySystem, IsRead: true},
	}

	s := ComputeStats(items)

	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.Unread != 2 {
		t.Errorf("Unread = %d, want 2", s.Unread)
	}
	if s.Critical != 1 {
		t.Errorf("Critical = %d, want 1 (read critical entries are excluded)", s.Critical)
	}
	if s.ActionRequired != 1 {
		t.Errorf("ActionRequired = %d, want 1", s.ActionRequired)
	}
	if s.ByCategory[CategoryMedical] != 2 || s.ByCategory[CategoryAdministrative] != 1 || s.ByCategory[CategorySystem] != 1 {
		t.Errorf("ByCategory = %v", s.ByCategory)
	}
	if _, ok := s.ByCategory[CategorySecurity]; ok {
		t.Errorf("expected no security entry, got %v", s.ByCategory)
	}
	if s.ByPriority[PriorityCritical] != 2 || s.ByPriority[PriorityLow] != 1 || s.ByPriority[PriorityMedium] != 1 {
		t.Errorf("ByPriority = %v", s.ByPriority)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	if s.Total != 0 || s.Unread != 0 {
		t.Errorf("unexpected stats for empty list: %+v", s)
	}
	if s.ByCategory == nil || s.ByPriority == nil {
		t.Error("expected non-nil breakdown maps")
	}
}

func TestNotification_JSONFieldNames(t *testing.T) {
	n := Notification{ID: "n1", Type: TypeInfo, IsRead: true, ActionRequired: true, PatientID: "P-1", Timestamp: baseTime}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "type", "isRead", "actionRequired", "patientId", "timestamp"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
	if _, ok := m["expiresAt"]; ok {
		t.Errorf("expiresAt should be omitted when unset: %s", data)
	}
}

func TestSeedNotifications(t *testing.T) {
	seed := SeedNotifications(baseTime)
	seen := make(map[string]bool)
	for i, n := range seed {
		if seen[n.ID] {
			t.Errorf("duplicate seed id %s", n.ID)
		}
		seen[n.ID] = true
		if i > 0 && n.Timestamp.After(seed[i-1].Timestamp) {
			t.Errorf("seed not newest first at %d", i)
		}
	}
}
