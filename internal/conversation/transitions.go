package conversation

import (
	"context"
	"errors"

	"feedback-bot/internal/models"

	"github.com/looplab/fsm"
)

const (
	eventStart     = "start"
	eventBootstrap = "bootstrap"
	eventRate      = "rate"
	eventFinish    = "finish"
)

var (
	idle            = string(models.StepIdle)
	awaitingRating  = string(models.StepAwaitingRating)
	awaitingComment = string(models.StepAwaitingComment)
)

// dialogEvents is the whole dialog. A rating that arrives with no active
// conversation goes through bootstrap first, so idle never jumps straight to
// awaiting_comment. Pressing a rating again while a comment is pending
// replaces the rating.
var dialogEvents = fsm.Events{
	{Name: eventStart, Src: []string{idle, awaitingRating, awaitingComment}, Dst: awaitingRating},
	{Name: eventBootstrap, Src: []string{idle}, Dst: awaitingRating},
	{Name: eventRate, Src: []string{awaitingRating, awaitingComment}, Dst: awaitingComment},
	{Name: eventFinish, Src: []string{awaitingComment}, Dst: idle},
}

// transition applies event to from and returns the resulting step, or an
// error when the event is not allowed in that step.
func transition(ctx context.Context, from models.Step, event string) (models.Step, error) {
	m := fsm.NewFSM(string(from), dialogEvents, fsm.Callbacks{})
	if err := m.Event(ctx, event); err != nil {
		var same fsm.NoTransitionError
		if !errors.As(err, &same) {
			return from, err
		}
	}
	return models.Step(m.Current()), nil
}
