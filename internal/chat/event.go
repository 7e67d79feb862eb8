package chat

import (
	"context"
	"io"
)

// Kind is the closed set of message payloads the relay understands.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindImage
	KindVideo
	KindAudio
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindFile:
		return "file"
	default:
		return "unsupported"
	}
}

// Event is one inbound chat message, reduced to what the relay acts on.
// Non-message events and message types outside Kind arrive as KindUnsupported.
type Event struct {
	WebhookEventID string
	ReplyToken     string
	MessageID      string
	Kind           Kind
	Text           string
}

// Messenger talks back to the chat platform.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, text string) error
	Content(ctx context.Context, messageID string) (io.ReadCloser, error)
}
