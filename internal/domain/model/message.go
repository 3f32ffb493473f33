package model

import (
	"time"

	"bluegenie-core/internal/domain"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// MessageKind describes the structural shape of a message.
type MessageKind string

const (
	MessageText          MessageKind = "text"
	MessageTextWithImage MessageKind = "text_with_image"
	MessageImage         MessageKind = "image"
	MessageTextWithFile  MessageKind = "text_with_file"
	MessageFile          MessageKind = "file"
)

// Attachment is an optional image/file reference carried by a message.
type Attachment struct {
	URI      string `json:"uri"`
	MimeType string `json:"mime_type"`
	Name     string `json:"name,omitempty"`
}

// Message is one conversational turn, owned by exactly one personality log.
type Message struct {
	ID            string      `json:"id"`
	PersonalityID string      `json:"personality_id"`
	Role          MessageRole `json:"role"`
	Content       string      `json:"content"`
	Kind          MessageKind `json:"kind"`
	Attachment    *Attachment `json:"attachment,omitempty"`
	Bookmarked    bool        `json:"bookmarked"`
	CreatedAt     time.Time   `json:"created_at"`
}

func NewMessage(personalityID string, role MessageRole, content string) (*Message, error) {
	if personalityID == "" || role == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Message{
		ID:            uuid.NewString(),
		PersonalityID: personalityID,
		Role:          role,
		Content:       content,
		Kind:          MessageText,
		CreatedAt:     time.Now(),
	}, nil
}

// WithAttachment attaches an image/file reference and derives the kind
// from the declared MIME type and whether any text accompanies it.
func (m *Message) WithAttachment(att Attachment, isImage bool) *Message {
	m.Attachment = &att
	switch {
	case isImage && m.Content != "":
		m.Kind = MessageTextWithImage
	case isImage:
		m.Kind = MessageImage
	case m.Content != "":
		m.Kind = MessageTextWithFile
	default:
		m.Kind = MessageFile
	}
	return m
}

// ConversationLog is the ordered message sequence for one personality.
// Order is creation order; a non-empty log always starts with the
// personality greeting (or a reset notice) after any reset.
type ConversationLog struct {
	PersonalityID string    `json:"personality_id"`
	Messages      []Message `json:"messages"`
}

func (l *ConversationLog) LastActivity() time.Time {
	if len(l.Messages) == 0 {
		return time.Time{}
	}
	return l.Messages[len(l.Messages)-1].CreatedAt
}
