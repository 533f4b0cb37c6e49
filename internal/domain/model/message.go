package model

import (
	"errors"
	"strings"
	"time"
)

// Message is a single message exchanged on an application thread.
type Message struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	SenderID      string    `json:"sender_id"`
	Body          string    `json:"body"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// SendMessageRequest represents sending one message on an application thread.
type SendMessageRequest struct {
	ApplicationID string `json:"application_id"`
	SenderID      string `json:"sender_id"`
	Body          string `json:"body"`
}

// Validate validates the SendMessageRequest fields.
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.ApplicationID) == "" {
		return errors.New("application id is required")
	}
	if strings.TrimSpace(r.SenderID) == "" {
		return errors.New("sender id is required")
	}
	if strings.TrimSpace(r.Body) == "" {
		return errors.New("message body is required")
	}
	return nil
}
