package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

// JobRepository stores worker bookkeeping for extraction jobs.
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	Update(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
}
