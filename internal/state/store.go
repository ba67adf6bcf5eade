// Package state keeps each guest's in-progress dialog.
package state

import (
	"context"

	"feedback-bot/internal/models"
)

// Store holds conversation state keyed by guest id. Each call is atomic for
// its key and calls for different keys never wait on each other. Get returns
// nil when no conversation is active. Setting an idle state clears the key.
type Store interface {
	Get(ctx context.Context, userID int64) (*models.ConversationState, error)
	Set(ctx context.Context, userID int64, st *models.ConversationState) error
	Clear(ctx context.Context, userID int64) error
}

func isIdle(st *models.ConversationState) bool {
	return st.CurrentStep() == models.StepIdle
}
