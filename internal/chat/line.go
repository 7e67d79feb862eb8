package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"pipi/internal/config"
)

type LineClient struct {
	bot *linebot.Client
}

func NewLineClient(cfg config.LINEConfig) (*LineClient, error) {
	bot, err := linebot.New(
		cfg.ChannelSecret,
		cfg.ChannelAccessToken,
		linebot.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("init line client: %w", err)
	}
	return &LineClient{bot: bot}, nil
}

func (c *LineClient) Reply(ctx context.Context, replyToken string, text string) error {
	if _, err := c.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

func (c *LineClient) Content(ctx context.Context, messageID string) (io.ReadCloser, error) {
	resp, err := c.bot.GetMessageContent(messageID).WithContext(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message content: %w", err)
	}
	return resp.Content, nil
}

// ParseEvents decodes a webhook body. The signature must already be verified.
func ParseEvents(body []byte) ([]Event, error) {
	var request struct {
		Events []*linebot.Event `json:"events"`
	}
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}

	events := make([]Event, 0, len(request.Events))
	for _, e := range request.Events {
		if e == nil {
			continue
		}
		events = append(events, fromLINE(e))
	}
	return events, nil
}

func fromLINE(e *linebot.Event) Event {
	event := Event{
		WebhookEventID: e.WebhookEventID,
		ReplyToken:     e.ReplyToken,
	}
	if e.Type != linebot.EventTypeMessage {
		return event
	}

	switch m := e.Message.(type) {
	case *linebot.TextMessage:
		event.Kind, event.MessageID, event.Text = KindText, m.ID, m.Text
	case *linebot.ImageMessage:
		event.Kind, event.MessageID = KindImage, m.ID
	case *linebot.VideoMessage:
		event.Kind, event.MessageID = KindVideo, m.ID
	case *linebot.AudioMessage:
		event.Kind, event.MessageID = KindAudio, m.ID
	case *linebot.FileMessage:
		event.Kind, event.MessageID = KindFile, m.ID
	}
	return event
}
