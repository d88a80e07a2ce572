package port

import (
	"context"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, job *entity.Job) error
}
