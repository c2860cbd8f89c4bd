package models

import "time"

// ContentSet is a gallery item stored in the contentSets collection.
type ContentSet struct {
	ID           string    `json:"id" firestore:"-"`
	Title        string    `json:"title" firestore:"title"`
	Description  string    `json:"description,omitempty" firestore:"description,omitempty"`
	URL          string    `json:"url" firestore:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" firestore:"thumbnailUrl,omitempty"`
	Type         string    `json:"type" firestore:"type"` // "image" or "video"
	FileName     string    `json:"fileName" firestore:"fileName"`
	StoragePath  string    `json:"-" firestore:"storagePath"`
	Size         int64     `json:"size" firestore:"size"`
	IsPublic     bool      `json:"isPublic" firestore:"isPublic"`
	Tags         []string  `json:"tags,omitempty" firestore:"tags,omitempty"`
	Category     string    `json:"category,omitempty" firestore:"category,omitempty"`
	Price        float64   `json:"price" firestore:"price"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// Comment is stored under contentSets/{contentId}/comments.
type Comment struct {
	ID        string    `json:"id" firestore:"-"`
	ContentID string    `json:"contentId" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	Text      string    `json:"text" firestore:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
