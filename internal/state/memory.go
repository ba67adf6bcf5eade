package state

import (
	"context"
	"sync"

	"feedback-bot/internal/models"
)

// MemoryStore is the single-instance store. State is lost on restart.
type MemoryStore struct {
	states sync.Map // int64 -> *models.ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*models.ConversationState, error) {
	v, ok := s.states.Load(userID)
	if !ok {
		return nil, nil
	}
	return v.(*models.ConversationState).Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, st *models.ConversationState) error {
	if isIdle(st) {
		s.states.Delete(userID)
		return nil
	}
	s.states.Store(userID, st.Clone())
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.states.Delete(userID)
	return nil
}
