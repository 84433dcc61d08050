package task

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/juridoc/internal/model"
)

// rank orders statuses so transitions can only move forward.
// Every terminal status shares the highest rank.
var rank = map[model.Status]int{
	model.StatusPending:           0,
	model.StatusProcessing:        1,
	model.StatusExtractingContent: 2,
	model.StatusAnnotating:        3,
	model.StatusCompleted:         4,
	model.StatusFailed:            4,
	model.StatusCancelled:         4,
}

// entry is the single mutable cell per task. The mutex serializes writers;
// readers get a copy taken under the same lock.
type entry struct {
	mu   sync.Mutex
	task model.Task
}

// Registry stores tasks by id. Terminal records expire ttl after their last
// update; queued and running tasks never expire, so a long wait for a worker
// cannot lose a task.
type Registry struct {
	items *gocache.Cache
	now   func() time.Time
}

// NewRegistry creates a registry whose terminal records expire ttl after their last update
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		items: gocache.New(ttl, ttl),
		now:   time.Now,
	}
}

// Create allocates a pending task that owns doc
func (r *Registry) Create(kind model.TaskKind, doc *model.Document, types []model.EntityType) model.Task {
	now := r.now()
	e := &entry{task: model.Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Status:     model.StatusPending,
		Progress:   "Task queued",
		Document:   doc,
		Types:      slices.Clone(types),
		CreatedAt:  now,
		UpdatedAt:  now,
		Timestamps: map[model.Status]time.Time{model.StatusPending: now},
	}}

	r.items.Set(e.task.ID, e, gocache.NoExpiration)
	return snapshot(&e.task)
}

// Get returns a snapshot of the task
func (r *Registry) Get(id string) (model.Task, error) {
	e, err := r.lookup(id)
	if err != nil {
		return model.Task{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(&e.task), nil
}

// Delete removes a task record
func (r *Registry) Delete(id string) {
	r.items.Delete(id)
}

// Len returns the number of stored tasks, expired ones included until cleanup
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

// Claim moves a pending task to processing. Exactly one caller can claim a
// given task; every other caller, and any caller after cancellation, gets
// ErrInvalidTransition.
func (r *Registry) Claim(id string) (model.Task, error) {
	return r.update(id, func(t *model.Task) error {
		if t.Status != model.StatusPending {
			return fmt.Errorf("%w: claim %s task", ErrInvalidTransition, t.Status)
		}
		r.advance(t, model.StatusProcessing, "Processing started")
		return nil
	})
}

// Transition moves a task forward to status with a progress message
func (r *Registry) Transition(id string, status model.Status, progress string) (model.Task, error) {
	return r.update(id, func(t *model.Task) error {
		if err := checkTransition(t.Status, status); err != nil {
			return err
		}
		r.advance(t, status, progress)
		return nil
	})
}

// Complete stores the result of an annotation task and makes it terminal
func (r *Registry) Complete(id string, result *model.Document, failures []model.TypeFailure) (model.Task, error) {
	return r.update(id, func(t *model.Task) error {
		if err := checkTransition(t.Status, model.StatusCompleted); err != nil {
			return err
		}
		t.Result = result
		t.Failures = slices.Clone(failures)
		progress := "Document annotated"
		if len(failures) > 0 {
			progress = fmt.Sprintf("Document annotated, %d of %d entity types failed", len(failures), len(t.Types))
		}
		r.advance(t, model.StatusCompleted, progress)
		return nil
	})
}

// CompleteSummary stores the result of a summarization task and makes it terminal
func (r *Registry) CompleteSummary(id string, summary *model.Summary) (model.Task, error) {
	return r.update(id, func(t *model.Task) error {
		if err := checkTransition(t.Status, model.StatusCompleted); err != nil {
			return err
		}
		t.Summary = summary
		r.advance(t, model.StatusCompleted, "Document summarized")
		return nil
	})
}

// Fail records cause and makes the task terminal. Per-type failures, if
// any, are kept for inspection.
func (r *Registry) Fail(id string, cause error, failures []model.TypeFailure) (model.Task, error) {
	return r.update(id, func(t *model.Task) error {
		if err := checkTransition(t.Status, model.StatusFailed); err != nil {
			return err
		}
		t.Error = cause.Error()
		t.Failures = slices.Clone(failures)
		r.advance(t, model.StatusFailed, "Task failed")
		return nil
	})
}

// Cancel marks a pending task cancelled
func (r *Registry) Cancel(id string) (model.Task, error) {
	return r.update(id, func(t *model.Task) error {
		if t.Status != model.StatusPending {
			return fmt.Errorf("%w: task is %s", ErrNotCancellable, t.Status)
		}
		r.advance(t, model.StatusCancelled, "Task cancelled")
		return nil
	})
}

func (r *Registry) lookup(id string) (*entry, error) {
	v, found := r.items.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	e, ok := v.(*entry)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return e, nil
}

// update applies mutate under the task lock. Terminal records get a fresh TTL.
func (r *Registry) update(id string, mutate func(*model.Task) error) (model.Task, error) {
	e, err := r.lookup(id)
	if err != nil {
		return model.Task{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := mutate(&e.task); err != nil {
		return snapshot(&e.task), err
	}
	expiration := gocache.NoExpiration
	if e.task.Status.Terminal() {
		expiration = gocache.DefaultExpiration
	}
	r.items.Set(id, e, expiration)
	return snapshot(&e.task), nil
}

func (r *Registry) advance(t *model.Task, status model.Status, progress string) {
	now := r.now()
	t.Status = status
	t.Progress = progress
	t.UpdatedAt = now
	t.Timestamps[status] = now
}

func checkTransition(from, to model.Status) error {
	if from.Terminal() {
		return fmt.Errorf("%w: task already %s", ErrInvalidTransition, from)
	}
	if to == model.StatusFailed {
		return nil
	}
	if rank[to] <= rank[from] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// snapshot copies the mutable parts of t. Document, Result and Summary are
// shared: the input is owned by the task and results are never modified
// after they are written.
func snapshot(t *model.Task) model.Task {
	s := *t
	s.Types = slices.Clone(t.Types)
	s.Failures = slices.Clone(t.Failures)
	s.Timestamps = maps.Clone(t.Timestamps)
	return s
}
