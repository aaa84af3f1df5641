// Package confirm gates destructive paper operations behind an explicit
// request / confirm handshake.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNothingPending = errors.New("no action awaiting confirmation")
	ErrUnknownAction  = errors.New("unknown action kind")
)

// Kind identifies a destructive action
type Kind string

const (
	KindDeleteSection  Kind = "delete-section"
	KindDeleteGroup    Kind = "delete-group"
	KindDeleteQuestion Kind = "delete-question"
)

// Action is a recorded, not yet executed deletion
type Action struct {
	Kind        Kind      `json:"kind"`
	SectionID   string    `json:"sectionId"`
	GroupID     string    `json:"groupId,omitempty"`
	QuestionID  string    `json:"questionId,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Validate checks that the action names every id its kind needs
func (a Action) Validate() error {
	switch a.Kind {
	case KindDeleteSection:
		if a.SectionID == "" {
			return fmt.Errorf("%s: section id required", a.Kind)
		}
	case KindDeleteGroup:
		if a.SectionID == "" || a.GroupID == "" {
			return fmt.Errorf("%s: section and group ids required", a.Kind)
		}
	case KindDeleteQuestion:
		if a.SectionID == "" || a.GroupID == "" || a.QuestionID == "" {
			return fmt.Errorf("%s: section, group and question ids required", a.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return nil
}

// Prompt is the confirmation message shown for the action
func (a Action) Prompt() string {
	switch a.Kind {
	case KindDeleteSection:
		return "Delete this section and all of its groups and questions?"
	case KindDeleteGroup:
		return "Delete this question group and all of its questions?"
	case KindDeleteQuestion:
		return "Delete this question?"
	}
	return "Are you sure?"
}

// Deleter is the set of paper operations the gate may execute
type Deleter interface {
	DeleteSection(ctx context.Context, sectionID string) error
	DeleteGroup(ctx context.Context, sectionID, groupID string) error
	DeleteQuestion(ctx context.Context, sectionID, groupID, questionID string) error
}

// PendingStore holds at most one pending action per owner
type PendingStore interface {
	Put(ctx context.Context, owner string, action *Action) error
	Get(ctx context.Context, owner string) (*Action, error) // nil, nil when nothing is pending
	Delete(ctx context.Context, owner string) error
}

// Gate records deletions and only runs them once confirmed
type Gate struct {
	store   PendingStore
	deleter Deleter
	logger  *zap.Logger
	now     func() time.Time
}

// NewGate creates a gate executing confirmed actions against deleter
func NewGate(store PendingStore, deleter Deleter, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		store:   store,
		deleter: deleter,
		logger:  logger,
		now:     time.Now,
	}
}

// RequestConfirm records action for owner, replacing whatever was pending,
// and returns it so the caller can show the prompt.
func (g *Gate) RequestConfirm(ctx context.Context, owner string, action Action) (*Action, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	action.RequestedAt = g.now()
	if err := g.store.Put(ctx, owner, &action); err != nil {
		return nil, fmt.Errorf("record pending action: %w", err)
	}
	g.logger.Debug("confirmation requested", zap.String("owner", owner), zap.String("kind", string(action.Kind)))
	return &action, nil
}

// Pending returns the action awaiting confirmation, or ErrNothingPending
func (g *Gate) Pending(ctx context.Context, owner string) (*Action, error) {
	action, err := g.store.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, ErrNothingPending
	}
	return action, nil
}

// Confirm executes and clears the pending action. The action is cleared even
// when the deletion fails, so a stale target cannot be retried by accident.
func (g *Gate) Confirm(ctx context.Context, owner string) (*Action, error) {
	action, err := g.Pending(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := g.store.Delete(ctx, owner); err != nil {
		return nil, fmt.Errorf("clear pending action: %w", err)
	}

	switch action.Kind {
	case KindDeleteSection:
		err = g.deleter.DeleteSection(ctx, action.SectionID)
	case KindDeleteGroup:
		err = g.deleter.DeleteGroup(ctx, action.SectionID, action.GroupID)
	case KindDeleteQuestion:
		err = g.deleter.DeleteQuestion(ctx, action.SectionID, action.GroupID, action.QuestionID)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action.Kind)
	}
	g.logger.Info("confirmed action executed", zap.String("owner", owner), zap.String("kind", string(action.Kind)), zap.Error(err))
	return action, err
}

// Cancel discards the pending action
func (g *Gate) Cancel(ctx context.Context, owner string) error {
	action, err := g.Pending(ctx, owner)
	if err != nil {
		return err
	}
	g.logger.Debug("confirmation cancelled", zap.String("owner", owner), zap.String("kind", string(action.Kind)))
	return g.store.Delete(ctx, owner)
}

// MemoryStore is an in-process PendingStore
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]Action
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]Action)}
}

func (s *MemoryStore) Put(ctx context.Context, owner string, action *Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[owner] = *action
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, owner string) (*Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.pending[owner]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) Delete(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, owner)
	return nil
}
