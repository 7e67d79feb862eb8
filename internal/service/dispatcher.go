package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"pipi/internal/chat"
	"pipi/internal/media"
)

const (
	TriggerPhrase    = "写真一覧"
	ReplyUnsupported = "画像以外は送れません、ごめんなさい!"
	ReplyFailed      = "送信が失敗しました、もう一度トライしてみて下さい!"
	ReplySent        = "送信されました!"
)

// Deduper reports whether a webhook event id is seen for the first time.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

type Dispatcher struct {
	messenger chat.Messenger
	intake    *IntakeService
	dedupe    Deduper
	listURL   string
	log       zerolog.Logger
}

func NewDispatcher(messenger chat.Messenger, intake *IntakeService, dedupe Deduper, publicBaseURL string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		intake:    intake,
		dedupe:    dedupe,
		listURL:   strings.TrimSuffix(publicBaseURL, "/") + "/list",
		log:       log,
	}
}

// DispatchAll handles events in order. Failures are logged and do not stop
// the remaining events.
func (d *Dispatcher) DispatchAll(ctx context.Context, events []chat.Event) {
	for _, event := range events {
		if err := d.Dispatch(ctx, event); err != nil {
			d.log.Error().
				Err(err).
				Str("kind", event.Kind.String()).
				Str("message_id", event.MessageID).
				Msg("handle chat event failed")
		}
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event chat.Event) error {
	if !d.firstSeen(ctx, event) {
		d.log.Debug().Str("webhook_event_id", event.WebhookEventID).Msg("skip redelivered event")
		return nil
	}

	switch event.Kind {
	case chat.KindText:
		return d.handleText(ctx, event)
	case chat.KindImage:
		return d.handleImage(ctx, event)
	case chat.KindVideo, chat.KindAudio, chat.KindFile:
		return d.reply(ctx, event, ReplyUnsupported)
	case chat.KindUnsupported:
		return nil
	}
	return nil
}

func (d *Dispatcher) firstSeen(ctx context.Context, event chat.Event) bool {
	if d.dedupe == nil || event.WebhookEventID == "" {
		return true
	}
	first, err := d.dedupe.FirstSeen(ctx, event.WebhookEventID)
	if err != nil {
		d.log.Warn().Err(err).Msg("webhook dedupe failed")
		return true
	}
	return first
}

func (d *Dispatcher) handleText(ctx context.Context, event chat.Event) error {
	if event.Text != TriggerPhrase {
		return nil
	}
	return d.reply(ctx, event, "写真一覧です "+d.listURL)
}

func (d *Dispatcher) handleImage(ctx context.Context, event chat.Event) error {
	content, err := d.messenger.Content(ctx, event.MessageID)
	if err != nil {
		d.replyQuietly(ctx, event, ReplyFailed)
		return fmt.Errorf("fetch content: %w", err)
	}
	defer content.Close()

	if _, err := d.intake.Ingest(ctx, content, media.ChatTransform); err != nil {
		text := ReplyFailed
		if errors.Is(err, ErrUnsupportedAttachment) {
			text = ReplyUnsupported
		}
		d.replyQuietly(ctx, event, text)
		return err
	}

	return d.reply(ctx, event, ReplySent)
}

func (d *Dispatcher) reply(ctx context.Context, event chat.Event, text string) error {
	return d.messenger.Reply(ctx, event.ReplyToken, text)
}

func (d *Dispatcher) replyQuietly(ctx context.Context, event chat.Event, text string) {
	if err := d.reply(ctx, event, text); err != nil {
		d.log.Warn().Err(err).Msg("reply failed")
	}
}
