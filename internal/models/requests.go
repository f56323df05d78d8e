package models

// ReviewRequest submits code for review
type ReviewRequest struct {
	Code      string  `json:"code" binding:"required"`
	Language  string  `json:"language" binding:"required"`
	SessionID string  `json:"session_id" binding:"required,max=128"`
	FilePath  *string `json:"file_path,omitempty"`
}

// AcceptRequest records an accepted suggestion
type AcceptRequest struct {
	SessionID      string  `json:"session_id" binding:"required,max=128"`
	SuggestionID   int     `json:"suggestion_id" binding:"required,min=1"`
	SuggestionText string  `json:"suggestion_text" binding:"required"`
	ModifiedText   string  `json:"modified_text"`
	OriginalCode   string  `json:"original_code"`
	Language       string  `json:"language"`
	FilePath       *string `json:"file_path,omitempty"`
}

// RejectRequest records a rejected suggestion
type RejectRequest struct {
	SessionID      string  `json:"session_id" binding:"required,max=128"`
	SuggestionID   int     `json:"suggestion_id" binding:"required,min=1"`
	SuggestionText string  `json:"suggestion_text" binding:"required"`
	RejectReason   string  `json:"reject_reason"`
	Language       string  `json:"language"`
	FilePath       *string `json:"file_path,omitempty"`
}

// ModifyRequest records a developer's rewrite of a suggestion
type ModifyRequest struct {
	SessionID    string  `json:"session_id" binding:"required,max=128"`
	SuggestionID int     `json:"suggestion_id" binding:"required,min=1"`
	OriginalText string  `json:"original_text" binding:"required"`
	ModifiedText string  `json:"modified_text" binding:"required"`
	Language     string  `json:"language"`
	FilePath     *string `json:"file_path,omitempty"`
}

// AnalyticsFilter narrows analytics queries. Dates use YYYY-MM-DD.
type AnalyticsFilter struct {
	Language  string `json:"language,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}
