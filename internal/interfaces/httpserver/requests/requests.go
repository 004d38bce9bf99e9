package requests

import "strings"

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Username string `json:"username"`
	Subject  string `json:"subject"`
	Question string `json:"question" validate:"required"`
}

// Normalize trims surrounding whitespace so a blank question fails validation.
func (r *ContactRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Question = strings.TrimSpace(r.Question)
}

// DeleteFileQuery carries the DELETE /api/upload query parameters.
type DeleteFileQuery struct {
	FileID       string `form:"fileId" validate:"required"`
	OpenAIFileID string `form:"openaiFileId" validate:"required"`
}

func (q *DeleteFileQuery) Normalize() {
	q.FileID = strings.TrimSpace(q.FileID)
	q.OpenAIFileID = strings.TrimSpace(q.OpenAIFileID)
}
