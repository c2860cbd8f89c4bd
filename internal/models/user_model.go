package models

import "time"

// SubscriptionStatus mirrors the billing provider's subscription status
// vocabulary verbatim. Values other than the constants below are stored as-is.
type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"

	SubscriptionIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionPaused            SubscriptionStatus = "paused"
)

// Valid reports whether s is one of the known status values.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionInactive, SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue,
		SubscriptionCanceled, SubscriptionUnpaid, SubscriptionIncomplete,
		SubscriptionIncompleteExpired, SubscriptionPaused:
		return true
	}
	return false
}

// Entitled reports whether the status grants access to subscriber-only content.
func (s SubscriptionStatus) Entitled() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// RoleAdmin marks a user allowed to manage content and read dashboard data.
const RoleAdmin = "admin"

// Subscription is the entitlement sub-object stored under users/{uid}.subscription.
// It caches billing-provider state and is only written by webhook reconciliation.
type Subscription struct {
	Status         SubscriptionStatus `json:"status" firestore:"status"`
	CustomerID     string             `json:"customerId,omitempty" firestore:"customerId,omitempty"`
	SubscriptionID string             `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"`
	PriceID        string             `json:"priceId,omitempty" firestore:"priceId,omitempty"`
	UpdatedAt      time.Time          `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// User represents a user profile together with its entitlement record.
type User struct {
	ID                      string            `json:"id" firestore:"-"` // Firebase Auth UID, also the document ID
	Email                   string            `json:"email" firestore:"email"`
	DisplayName             string            `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL                string            `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	Bio                     string            `json:"bio,omitempty" firestore:"bio,omitempty"`
	Role                    string            `json:"role,omitempty" firestore:"role,omitempty"`
	SocialLinks             map[string]string `json:"socialLinks,omitempty" firestore:"socialLinks,omitempty"`
	NotificationPreferences map[string]bool   `json:"notificationPreferences,omitempty" firestore:"notificationPreferences,omitempty"`
	PrivacySettings         map[string]bool   `json:"privacySettings,omitempty" firestore:"privacySettings,omitempty"`
	Subscription            Subscription      `json:"subscription" firestore:"subscription"`
	CreatedAt               time.Time         `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt               time.Time         `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SubscriptionChange is the set of provider-sourced fields written into the
// entitlement record for one webhook event.
type SubscriptionChange struct {
	Status         SubscriptionStatus
	CustomerID     string
	SubscriptionID string
	PriceID        string
}
