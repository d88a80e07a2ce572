package port

import (
	"context"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg entity.ExtractionStatusMessage) error
}

// DLQPublisher parks requests that can never succeed.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}
