package task

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/juridoc/internal/model"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry(time.Minute)

	created := r.Create(model.KindAnnotation, &model.Document{ID: "doc"}, []model.EntityType{model.EntityTemei})
	require.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Contains(t, created.Timestamps, model.StatusPending)

	got, err := r.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "doc", got.Document.ID)

	other := r.Create(model.KindAnnotation, &model.Document{}, nil)
	assert.NotEqual(t, created.ID, other.ID)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_UnknownTask(t *testing.T) {
	r := NewRegistry(time.Minute)

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownTask)

	_, err = r.Transition("missing", model.StatusProcessing, "")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestRegistry_SnapshotsAreCopies(t *testing.T) {
	r := NewRegistry(time.Minute)
	created := r.Create(model.KindAnnotation, &model.Document{}, []model.EntityType{model.EntityTemei})

	snap, _ := r.Get(created.ID)
	snap.Timestamps[model.StatusCompleted] = time.Now()
	snap.Types[0] = model.EntityParat
	snap.Status = model.StatusCompleted

	again, _ := r.Get(created.ID)
	assert.NotContains(t, again.Timestamps, model.StatusCompleted)
	assert.Equal(t, model.EntityTemei, again.Types[0])
	assert.Equal(t, model.StatusPending, again.Status)
}

func TestRegistry_TransitionsAreMonotonic(t *testing.T) {
	r := NewRegistry(time.Minute)
	id := r.Create(model.KindAnnotation, &model.Document{}, nil).ID

	_, err := r.Claim(id)
	require.NoError(t, err)
	_, err = r.Transition(id, model.StatusAnnotating, "annotating")
	require.NoError(t, err)

	_, err = r.Transition(id, model.StatusExtractingContent, "back")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = r.Transition(id, model.StatusAnnotating, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	done, err := r.Complete(id, &model.Document{ID: "out"}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, "out", done.Result.ID)

	// Terminal tasks never change
	_, err = r.Fail(id, errors.New("late"), nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = r.Complete(id, &model.Document{ID: "other"}, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	final, _ := r.Get(id)
	assert.Equal(t, "out", final.Result.ID)
	assert.Empty(t, final.Error)

	for _, s := range []model.Status{model.StatusPending, model.StatusProcessing, model.StatusAnnotating, model.StatusCompleted} {
		assert.Contains(t, final.Timestamps, s)
	}
	assert.NotContains(t, final.Timestamps, model.StatusExtractingContent)
}

func TestRegistry_FailFromAnyNonTerminalState(t *testing.T) {
	for _, status := range []model.Status{model.StatusProcessing, model.StatusExtractingContent, model.StatusAnnotating} {
		t.Run(string(status), func(t *testing.T) {
			r := NewRegistry(time.Minute)
			id := r.Create(model.KindAnnotation, &model.Document{}, nil).ID
			_, _ = r.Claim(id)
			if status != model.StatusProcessing {
				_, err := r.Transition(id, status, "")
				require.NoError(t, err)
			}

			failed, err := r.Fail(id, errors.New("endpoint unreachable"), nil)
			require.NoError(t, err)
			assert.Equal(t, model.StatusFailed, failed.Status)
			assert.Equal(t, "endpoint unreachable", failed.Error)
		})
	}
}

func TestRegistry_ClaimExactlyOnce(t *testing.T) {
	r := NewRegistry(time.Minute)
	id := r.Create(model.KindAnnotation, &model.Document{}, nil).ID

	var claimed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Claim(id); err == nil {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), claimed.Load())
}

func TestRegistry_Cancel(t *testing.T) {
	r := NewRegistry(time.Minute)

	pending := r.Create(model.KindAnnotation, &model.Document{}, nil).ID
	cancelled, err := r.Cancel(pending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	// A cancelled task can no longer be claimed
	_, err = r.Claim(pending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	running := r.Create(model.KindAnnotation, &model.Document{}, nil).ID
	_, _ = r.Claim(running)
	_, err = r.Cancel(running)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestRegistry_Expiry(t *testing.T) {
	r := NewRegistry(100 * time.Millisecond)
	id := r.Create(model.KindAnnotation, &model.Document{}, nil).ID

	// Queued and running tasks never expire
	time.Sleep(250 * time.Millisecond)
	_, err := r.Get(id)
	require.NoError(t, err)

	_, err = r.Claim(id)
	require.NoError(t, err)
	time.Sleep(250 * time.Millisecond)
	_, err = r.Get(id)
	require.NoError(t, err)

	// The TTL starts once the task is terminal
	_, err = r.Complete(id, &model.Document{}, nil)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = r.Get(id)
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)
	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestRegistry_CancelledPendingExpires(t *testing.T) {
	r := NewRegistry(50 * time.Millisecond)
	id := r.Create(model.KindAnnotation, &model.Document{}, nil).ID

	_, err := r.Cancel(id)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)
	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrUnknownTask)
}
