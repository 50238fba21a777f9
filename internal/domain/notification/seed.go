package notification

import "time"

// SeedNotifications returns the inbox a fresh practice starts with, stamped
// relative to now and ordered newest first.
func SeedNotifications(now time.Time) []Notification {
	return []Notification{
		{
			ID:             "seed-lab-critical",
			Type:           TypeUrgent,
			Title:          "Critical lab result",
			Message:        "Troponin level above threshold. Immediate review required.",
			Timestamp:      now.Add(-5 * time.Minute),
			Priority:       PriorityCritical,
			Category:       CategoryMedical,
			ActionRequired: true,
			PatientID:      "P-1042",
			PatientName:    "Marie Dubois",
			Service:        "cardiology",
		},
		{
			ID:          "seed-appointment",
			Type:        TypeInfo,
			Title:       "Appointment confirmed",
			Message:     "Follow-up consultation confirmed for tomorrow at 09:30.",
			Timestamp:   now.Add(-30 * time.Minute),
			Priority:    PriorityLow,
			Category:    CategoryAdministrative,
			PatientID:   "P-0877",
			PatientName: "Jean Martin",
			Service:     "general-medicine",
		},
		{
			ID:             "seed-allergy",
			Type:           TypeAlert,
			Title:          "Allergy conflict",
			Message:        "Prescribed amoxicillin conflicts with a recorded penicillin allergy.",
			Timestamp:      now.Add(-1 * time.Hour),
			Priority:       PriorityHigh,
			Category:       CategoryMedical,
			ActionRequired: true,
			PatientID:      "P-0311",
			PatientName:    "Sophie Laurent",
			Service:        "pharmacy",
		},
		{
			ID:        "seed-invoice-paid",
			Type:      TypeSuccess,
			Title:     "Invoice paid",
			Message:   "Invoice INV-2291 was settled by card.",
			Timestamp: now.Add(-3 * time.Hour),
			IsRead:    true,
			Priority:  PriorityLow,
			Category:  CategoryAdministrative,
			Service:   "billing",
		},
		{
			ID:        "seed-maintenance",
			Type:      TypeWarning,
			Title:     "Scheduled maintenance",
			Message:   "The records system will be unavailable tonight from 23:00 to 23:30.",
			Timestamp: now.Add(-6 * time.Hour),
			Priority:  PriorityMedium,
			Category:  CategorySystem,
		},
		{
			ID:             "seed-login",
			Type:           TypeWarning,
			Title:          "Unrecognized sign-in",
			Message:        "A sign-in from a new device was detected on a reception account.",
			Timestamp:      now.Add(-24 * time.Hour),
			IsRead:         true,
			Priority:       PriorityHigh,
			Category:       CategorySecurity,
			ActionRequired: true,
		},
	}
}
