package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type outboxRepository struct {
	store *Store
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	r.store.outboxByID[event.ID] = *event
	return nil
}

func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*model.OutboxEvent, 0)
	for id := range r.store.outboxByID {
		event := r.store.outboxByID[id]
		if event.Status != model.OutboxStatusPending {
			continue
		}
		out = append(out, &event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.outboxByID[id]
	if !ok {
		return apperrors.NotFound("outbox event", nil)
	}
	now := time.Now()
	event.Status = model.OutboxStatusProcessed
	event.ProcessedAt = &now
	r.store.outboxByID[id] = event
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.outboxByID[id]
	if !ok {
		return apperrors.NotFound("outbox event", nil)
	}
	event.Status = model.OutboxStatusFailed
	event.ErrorMessage = &errMsg
	event.RetryCount++
	r.store.outboxByID[id] = event
	return nil
}
