package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	TopicLogin         = "academy.auth.login"
	TopicLogout        = "academy.auth.logout"
	TopicVideoUploaded = "academy.video.uploaded"
)

// AuthEvent is published on login and logout
type AuthEvent struct {
	Address   string    `json:"address"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}

// VideoUploadedEvent is published when the upload sink received a file
type VideoUploadedEvent struct {
	VideoID string    `json:"video_id"`
	Size    int64     `json:"size"`
	At      time.Time `json:"at"`
}

// WatermillPublisher implements ports.EventPublisher using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string, sessionID string) error {
	return p.publish(ctx, TopicLogin, AuthEvent{Address: address, SessionID: sessionID, At: time.Now().UTC()})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string, sessionID string) error {
	return p.publish(ctx, TopicLogout, AuthEvent{Address: address, SessionID: sessionID, At: time.Now().UTC()})
}

// PublishVideoUploaded publishes an upload completion event
func (p *WatermillPublisher) PublishVideoUploaded(ctx context.Context, videoID string, size int64) error {
	return p.publish(ctx, TopicVideoUploaded, VideoUploadedEvent{VideoID: videoID, Size: size, At: time.Now().UTC()})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
