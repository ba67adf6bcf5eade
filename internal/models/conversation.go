package models

// Step is a guest's position in the feedback dialog.
type Step string

const (
	StepIdle            Step = "idle"
	StepAwaitingRating  Step = "awaiting_rating"
	StepAwaitingComment Step = "awaiting_comment"
)

// ConversationState is the per-guest in-progress dialog. A missing state and
// a state at StepIdle mean the same thing; stores never keep an idle state.
type ConversationState struct {
	Step   Step `json:"step"`
	Rating *int `json:"rating,omitempty"`
}

// CurrentStep treats a nil state as idle.
func (s *ConversationState) CurrentStep() Step {
	if s == nil || s.Step == "" {
		return StepIdle
	}
	return s.Step
}

// Clone returns a copy that shares no memory with s.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	c := &ConversationState{Step: s.Step}
	if s.Rating != nil {
		r := *s.Rating
		c.Rating = &r
	}
	return c
}
