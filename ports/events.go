package ports

import "context"

// EventPublisher publishes auth and upload events to other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, sessionID string) error
	PublishLogout(ctx context.Context, address string, sessionID string) error
	PublishVideoUploaded(ctx context.Context, videoID string, size int64) error
}
