package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/outbox"
	"github.com/ohada-ledger/internal/domain/shared"
)

type outboxRepo struct{ *repos }

func (r outboxRepo) Create(_ context.Context, message *outbox.Message) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	r.st.nextOutboxID++
	message.ID = r.st.nextOutboxID
	r.st.outbox = append(r.st.outbox, *message)
	return nil
}

func (r outboxRepo) GetPending(_ context.Context, limit int) ([]*outbox.Message, error) {
	var pending []*outbox.Message
	for _, m := range r.st.outbox {
		if m.Status == shared.OutboxStatusPending {
			m := m
			pending = append(pending, &m)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r outboxRepo) find(id int64) (*outbox.Message, error) {
	for i := range r.st.outbox {
		if r.st.outbox[i].ID == id {
			return &r.st.outbox[i], nil
		}
	}
	return nil, outbox.ErrMessageNotFound{ID: id}
}

func (r outboxRepo) UpdateStatus(_ context.Context, id int64, status shared.OutboxStatus) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	m, err := r.find(id)
	if err != nil {
		return err
	}
	m.Status = status
	now := time.Now()
	m.LastAttemptAt = &now
	return nil
}

func (r outboxRepo) IncrementAttempts(_ context.Context, id int64) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	m, err := r.find(id)
	if err != nil {
		return err
	}
	m.IncrementAttempts()
	return nil
}

func (r outboxRepo) Delete(_ context.Context, id int64) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	for i := range r.st.outbox {
		if r.st.outbox[i].ID == id {
			r.st.outbox = append(r.st.outbox[:i], r.st.outbox[i+1:]...)
			return nil
		}
	}
	return outbox.ErrMessageNotFound{ID: id}
}

func (r outboxRepo) ListByEntryID(_ context.Context, entryID uuid.UUID) ([]*outbox.Message, error) {
	var messages []*outbox.Message
	for _, m := range r.st.outbox {
		if m.EntryID == entryID {
			m := m
			messages = append(messages, &m)
		}
	}
	return messages, nil
}
