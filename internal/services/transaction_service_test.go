package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/storage/memory"
)

type fakePublisher struct {
	created []string
	deleted []string
	fail    bool
}

func (f *fakePublisher) PublishTransactionCreated(_ context.Context, id, _ string) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.created = append(f.created, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDeleted(_ context.Context, id, _ string) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestService(t *testing.T, pub *fakePublisher) (*TransactionService, *store.Store) {
	t.Helper()
	st := store.New(memory.New(), "u")
	require.NoError(t, st.Load(context.Background()))
	var events EventPublisher
	if pub != nil {
		events = pub
	}
	return NewTransactionService(st, events), st
}

func entry() core.Transaction {
	return core.Transaction{
		Amount:      core.Money{Cents: 1250},
		Category:    "Food",
		Description: "Groceries",
		Date:        core.NewDate(2024, 1, 15),
		Type:        core.Expense,
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc, st := newTestService(t, pub)

	saved, err := svc.Create(context.Background(), entry())
	require.NoError(t, err)
	assert.Len(t, st.List(), 1)
	require.Len(t, pub.created, 1)
	assert.Equal(t, saved.ID, pub.created[0])
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{fail: true}
	svc, st := newTestService(t, pub)

	_, err := svc.Create(context.Background(), entry())
	require.NoError(t, err, "broker failure must not fail the mutation")
	assert.Len(t, st.List(), 1)
}

func TestCreateValidationErrorDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc, st := newTestService(t, pub)

	bad := entry()
	bad.Amount = core.Money{}
	_, err := svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, st.List())
	assert.Empty(t, pub.created)
}

func TestDeletePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)

	saved, err := svc.Create(context.Background(), entry())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), saved.ID))
	require.Len(t, pub.deleted, 1)
	assert.Equal(t, saved.ID, pub.deleted[0])
}

func TestDeleteUnknownDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)

	err := svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, pub.deleted)
}

func TestNilPublisher(t *testing.T) {
	svc, st := newTestService(t, nil)

	saved, err := svc.Create(context.Background(), entry())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), saved.ID))
	assert.Empty(t, st.List())
	assert.NoError(t, svc.Close())
}
