package models

// CheckoutSessionRequest is the body of POST /create-checkout-session.
type CheckoutSessionRequest struct {
	PriceID string `json:"priceId" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

// PortalSessionRequest is the body of POST /create-portal-session.
type PortalSessionRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
}

// UpdateProfileRequest represents the request body for updating the caller's profile.
// Pointers distinguish "not provided" from "clear this field".
type UpdateProfileRequest struct {
	DisplayName *string            `json:"displayName,omitempty"`
	Bio         *string            `json:"bio,omitempty"`
	SocialLinks *map[string]string `json:"socialLinks,omitempty"`
}

// UpdatePreferencesRequest updates notification and privacy settings.
type UpdatePreferencesRequest struct {
	NotificationPreferences map[string]bool `json:"notificationPreferences,omitempty"`
	PrivacySettings         map[string]bool `json:"privacySettings,omitempty"`
}

// ContentMetadata accompanies an upload of one or more content files.
type ContentMetadata struct {
	Title        string   `form:"title" binding:"required"`
	Description  string   `form:"description"`
	IsPublic     bool     `form:"isPublic"`
	Tags         []string `form:"tags"`
	Category     string   `form:"category"`
	Price        float64  `form:"price"`
	ThumbnailURL string   `form:"thumbnailUrl"`
}

// CreateCommentRequest represents the request body for posting a comment.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// TrackEventRequest represents the request body for recording an analytics event.
type TrackEventRequest struct {
	Action   string                 `json:"action" binding:"required"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
