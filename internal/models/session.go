package models

import "time"

// Severity is the coarse urgency tag attached to a suggestion
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// SessionState tracks where a session is in the review pipeline.
// A session with no row is implicitly new.
type SessionState string

const (
	SessionStored    SessionState = "stored"
	SessionSuggested SessionState = "suggested"
)

// CodeSession is one code submission. A later review under the same
// session id supersedes the row and its suggestions.
type CodeSession struct {
	ID        uint         `gorm:"primaryKey" json:"-"`
	SessionID string       `gorm:"uniqueIndex;size:128;not null" json:"session_id"`
	Code      string       `gorm:"type:text;not null" json:"code"`
	Language  string       `gorm:"size:64" json:"language"`
	UserID    *uint        `gorm:"index" json:"user_id,omitempty"`
	State     SessionState `gorm:"size:16;not null;default:stored" json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName overrides the default table name
func (CodeSession) TableName() string { return "code_sessions" }

// Suggestion is one AI-generated review item. SuggestionID is the 1-based
// position among the suggestions of its session and is not stable across
// reviews. Rows are never updated.
type Suggestion struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	SessionID    string    `gorm:"uniqueIndex:idx_session_suggestion;size:128;not null" json:"session_id"`
	SuggestionID int       `gorm:"uniqueIndex:idx_session_suggestion;not null" json:"suggestion_id"`
	Text         string    `gorm:"column:suggestion_text;type:text;not null" json:"text"`
	Severity     Severity  `gorm:"size:8;not null" json:"severity"`
	Language     string    `gorm:"size:64" json:"language"`
	FilePath     *string   `json:"file_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (Suggestion) TableName() string { return "ai_suggestions" }

// SuggestionLatency is one gateway round-trip measurement
type SuggestionLatency struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SessionID string    `gorm:"index;size:128;not null" json:"session_id"`
	LatencyMS float64   `gorm:"not null" json:"latency_ms"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the default table name
func (SuggestionLatency) TableName() string { return "suggestion_latency" }
