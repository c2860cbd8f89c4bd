package models

import "time"

// AnalyticsEvent records a user action for the admin dashboard.
type AnalyticsEvent struct {
	ID        string                 `json:"id" firestore:"-"`
	Timestamp time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID    string                 `json:"userId" firestore:"userId"`
	Action    string                 `json:"action" firestore:"action"` // e.g. "content_upload", "content_view"
	Metadata  map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
}

// DashboardStats summarises the collections shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers        int64 `json:"totalUsers"`
	ActiveSubscribers int64 `json:"activeSubscribers"`
	TotalContent      int64 `json:"totalContent"`
}
