package models

import "time"

// PatternType classifies a feedback event
type PatternType string

const (
	PatternAccepted PatternType = "accepted"
	PatternRejected PatternType = "rejected"
	PatternModified PatternType = "modified"
)

// AcceptedFeedback records a suggestion the developer applied.
// SuggestionID is taken from the caller and is not checked against ai_suggestions.
type AcceptedFeedback struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      string    `gorm:"index;size:128;not null" json:"session_id"`
	SuggestionID   int       `json:"suggestion_id"`
	SuggestionText string    `gorm:"type:text" json:"suggestion_text"`
	ModifiedText   string    `gorm:"type:text" json:"modified_text"`
	OriginalCode   string    `gorm:"type:text" json:"original_code"`
	Language       string    `gorm:"size:64" json:"language"`
	FilePath       *string   `json:"file_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (AcceptedFeedback) TableName() string { return "accepted_suggestions" }

// RejectedFeedback records a dismissed suggestion. Its text is matched
// verbatim against future model output for the same session.
type RejectedFeedback struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      string    `gorm:"index;size:128;not null" json:"session_id"`
	SuggestionID   int       `json:"suggestion_id"`
	SuggestionText string    `gorm:"type:text" json:"suggestion_text"`
	RejectReason   string    `gorm:"type:text" json:"reject_reason"`
	Language       string    `gorm:"size:64" json:"language"`
	FilePath       *string   `json:"file_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (RejectedFeedback) TableName() string { return "rejected_suggestions" }

// ModifiedFeedback records a suggestion the developer rewrote
type ModifiedFeedback struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"index;size:128;not null" json:"session_id"`
	SuggestionID int       `json:"suggestion_id"`
	OriginalText string    `gorm:"type:text" json:"original_text"`
	ModifiedText string    `gorm:"type:text" json:"modified_text"`
	Language     string    `gorm:"size:64" json:"language"`
	FilePath     *string   `json:"file_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (ModifiedFeedback) TableName() string { return "modified_suggestions" }

// PatternData mirrors the feedback event a pattern was derived from
type PatternData struct {
	SuggestionText string  `json:"suggestion_text,omitempty"`
	OriginalText   string  `json:"original_text,omitempty"`
	ModifiedText   string  `json:"modified_text,omitempty"`
	RejectReason   string  `json:"reject_reason,omitempty"`
	Language       string  `json:"language,omitempty"`
	FilePath       *string `json:"file_path,omitempty"`
}

// UserPattern is one entry of the feedback history that biases later prompts
type UserPattern struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      *uint       `gorm:"index" json:"user_id,omitempty"`
	SessionID   string      `gorm:"index;size:128;not null" json:"session_id"`
	PatternType PatternType `gorm:"size:16;not null" json:"pattern_type"`
	PatternData PatternData `gorm:"serializer:json;type:text" json:"pattern_data"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

// TableName overrides the default table name
func (UserPattern) TableName() string { return "user_patterns" }
