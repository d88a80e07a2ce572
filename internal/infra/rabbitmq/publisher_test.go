package rabbitmq

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestStatusPublishing(t *testing.T) {
	id := uuid.New()
	msg := entity.ExtractionStatusMessage{JobID: id, Status: entity.JobStatusCompleted, Attempt: 2}

	p := statusPublishing(msg, []byte(`{}`))

	assert.Equal(t, "COMPLETED", p.Type)
	assert.Equal(t, id.String()+"-2-COMPLETED", p.MessageId)
	assert.Equal(t, id.String(), p.Headers[headerJobID])
	assert.Equal(t, []byte(`{}`), p.Body)
}

func TestDLQPublishingKeepsBody(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := dlqPublishing([]byte(`{invalid json`), "unmarshal_error", at)

	assert.Equal(t, `{invalid json`, string(p.Body))
	assert.Equal(t, at, p.Timestamp)
	assert.Equal(t, "unmarshal_error", p.Headers[headerReason])
	assert.Equal(t, "2024-05-01T12:00:00Z", p.Headers[headerFailedAt])
}
