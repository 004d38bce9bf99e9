package responses

import (
	"framelink-support/internal/domain/contact"
)

// ContactResponse is the synchronous answer to POST /api/contact.
type ContactResponse struct {
	Message   string             `json:"message"`
	Answer    string             `json:"answer"`
	Citations []contact.Citation `json:"citations"`
	ID        string             `json:"id,omitempty"`
}

type deltaFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type completeFrame struct {
	Type      string             `json:"type"`
	Citations []contact.Citation `json:"citations"`
	ID        string             `json:"id,omitempty"`
}

type fallbackFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	ID      string `json:"id,omitempty"`
}

func NewContactResponse(answer *contact.Answer) ContactResponse {
	citations := answer.Citations
	if citations == nil {
		citations = []contact.Citation{}
	}
	return ContactResponse{
		Message:   "Question answered successfully",
		Answer:    answer.Answer,
		Citations: citations,
		ID:        answer.ID,
	}
}

// NewStreamFrame returns the wire payload for ev, or false when ev is not sent to clients.
func NewStreamFrame(ev contact.Event) (any, bool) {
	switch ev.Type {
	case contact.EventDelta:
		return deltaFrame{Type: string(ev.Type), Content: ev.Content}, true
	case contact.EventComplete:
		citations := ev.Citations
		if citations == nil {
			citations = []contact.Citation{}
		}
		return completeFrame{Type: string(ev.Type), Citations: citations, ID: ev.ID}, true
	case contact.EventFallback:
		return fallbackFrame{Type: string(ev.Type), Content: ev.Content, ID: ev.ID}, true
	default:
		return nil, false
	}
}
