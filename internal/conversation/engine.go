package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"feedback-bot/internal/logger"
	"feedback-bot/internal/models"
	"feedback-bot/internal/notifier"
	"feedback-bot/internal/promo"
	"feedback-bot/internal/repository"
	"feedback-bot/internal/state"
	"feedback-bot/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	statsWindowDays = 7
	notifyTimeout   = 15 * time.Second
)

type CodeGenerator interface {
	Generate() (string, error)
}

type StatsReader interface {
	WindowStats(ctx context.Context, days int) (stats.Summary, error)
}

type Options struct {
	PromoValidDays int
	Texts          Texts
}

// Engine drives every guest through rating, comment and completion.
// Events for one guest are serialized by a per-guest lock held across the
// read, the insert and the clear of that guest's state; different guests
// never share a lock. Staff notification runs after the lock is released.
type Engine struct {
	states   state.Store
	locks    *state.Locker
	feedback repository.FeedbackRepository
	codes    CodeGenerator
	stats    StatsReader
	notifier notifier.Notifier
	opts     Options

	now     func() time.Time
	log     zerolog.Logger
	pending sync.WaitGroup
}

func NewEngine(
	states state.Store,
	feedback repository.FeedbackRepository,
	codes CodeGenerator,
	statsReader StatsReader,
	notify notifier.Notifier,
	opts Options,
) *Engine {
	return &Engine{
		states:   states,
		locks:    state.NewLocker(),
		feedback: feedback,
		codes:    codes,
		stats:    statsReader,
		notifier: notify,
		opts:     opts,
		now:      time.Now,
		log:      logger.With("conversation"),
	}
}

// Handle processes one event and returns what to send back to the guest.
// It never returns an error: every failure is turned into a reply.
func (e *Engine) Handle(ctx context.Context, ev Event) []Reply {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	log := e.log.With().
		Str("event_id", ev.ID).
		Str("event", ev.Kind.String()).
		Int64("user_id", ev.UserID).
		Logger()
	ctx = log.WithContext(ctx)
	log.Debug().Msg("event received")

	switch ev.Kind {
	case EventStart:
		return e.handleStart(ctx, ev)
	case EventHelp:
		return []Reply{{Text: e.opts.Texts.Help()}}
	case EventStats:
		return e.handleStats(ctx)
	case EventRating:
		return e.handleRating(ctx, ev)
	case EventSkip:
		return e.handleCompletion(ctx, ev, "", true)
	case EventText:
		return e.handleCompletion(ctx, ev, strings.TrimSpace(ev.Payload), false)
	default:
		log.Warn().Msg("unknown event kind")
		return nil
	}
}

// Drain waits for in-flight staff notifications.
func (e *Engine) Drain() {
	e.pending.Wait()
}

func (e *Engine) handleStart(ctx context.Context, ev Event) []Reply {
	log := zerolog.Ctx(ctx)
	unlock := e.locks.Lock(ev.UserID)
	defer unlock()

	if err := e.states.Clear(ctx, ev.UserID); err != nil {
		log.Error().Err(err).Msg("failed to clear conversation state")
		return []Reply{{Text: e.opts.Texts.Unavailable()}}
	}

	next, err := transition(ctx, models.StepIdle, eventStart)
	if err != nil {
		log.Error().Err(err).Msg("start transition rejected")
		return []Reply{{Text: e.opts.Texts.Unavailable()}}
	}
	if err := e.states.Set(ctx, ev.UserID, &models.ConversationState{Step: next}); err != nil {
		log.Error().Err(err).Msg("failed to save conversation state")
		return []Reply{{Text: e.opts.Texts.Unavailable()}}
	}

	return []Reply{{Text: e.opts.Texts.RatingPrompt(), Keyboard: KeyboardRating}}
}

func parseRating(raw string) (int, error) {
	r, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !models.ValidRating(r) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, raw)
	}
	return r, nil
}

func (e *Engine) handleRating(ctx context.Context, ev Event) []Reply {
	log := zerolog.Ctx(ctx)

	rating, err := parseRating(ev.Payload)
	if err != nil {
		log.Warn().Err(err).Msg("rejected rating selector")
		return []Reply{{Text: e.opts.Texts.InvalidRating(), Alert: true}}
	}

	unlock := e.locks.Lock(ev.UserID)
	defer unlock()

	st, err := e.states.Get(ctx, ev.UserID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load conversation state")
		return []Reply{{Text: e.opts.Texts.Unavailable(), Alert: true}}
	}

	step := st.CurrentStep()
	if step == models.StepIdle {
		// rating button pressed without /start, e.g. an old prompt
		if step, err = transition(ctx, step, eventBootstrap); err != nil {
			log.Error().Err(err).Msg("bootstrap transition rejected")
			return []Reply{{Text: e.opts.Texts.Unavailable(), Alert: true}}
		}
	}

	next, err := transition(ctx, step, eventRate)
	if err != nil {
		log.Error().Err(err).Str("step", string(step)).Msg("rate transition rejected")
		return []Reply{{Text: e.opts.Texts.Unavailable(), Alert: true}}
	}

	if err := e.states.Set(ctx, ev.UserID, &models.ConversationState{Step: next, Rating: &rating}); err != nil {
		log.Error().Err(err).Msg("failed to save conversation state")
		return []Reply{{Text: e.opts.Texts.Unavailable(), Alert: true}}
	}

	log.Info().Int("rating", rating).Msg("rating recorded")
	return []Reply{
		{Text: e.opts.Texts.RatingThanks(rating), ReplaceOriginal: true},
		{Text: e.opts.Texts.CommentPrompt(), Keyboard: KeyboardSkip},
	}
}

// handleCompletion finishes the conversation with comment. Free text that
// arrives outside the comment step is ignored; an explicit skip outside it
// is a lost session.
func (e *Engine) handleCompletion(ctx context.Context, ev Event, comment string, skip bool) []Reply {
	log := zerolog.Ctx(ctx)

	unlock := e.locks.Lock(ev.UserID)
	st, err := e.states.Get(ctx, ev.UserID)
	if err != nil {
		unlock()
		log.Error().Err(err).Msg("failed to load conversation state")
		return []Reply{{Text: e.opts.Texts.Unavailable()}}
	}
	if !skip && st.CurrentStep() != models.StepAwaitingComment {
		unlock()
		log.Debug().Str("step", string(st.CurrentStep())).Msg("text outside comment step ignored")
		return nil
	}

	record, err := e.complete(ctx, ev, st, comment)
	unlock()

	switch {
	case errors.Is(err, ErrLostSession):
		log.Warn().Str("step", string(st.CurrentStep())).Msg("completion without rating, session reset")
		return []Reply{{Text: e.opts.Texts.LostSession()}}
	case err != nil:
		log.Error().Err(err).Msg("failed to complete feedback")
		return []Reply{{Text: e.opts.Texts.SaveFailed()}}
	}

	log.Info().
		Uint64("feedback_id", record.ID).
		Int("rating", record.Rating).
		Msg("feedback saved")

	e.notifyStaff(record)

	return []Reply{{Text: e.opts.Texts.Completed(record.PromoCode, promo.FormatDate(record.ExpiresAt))}}
}

// complete runs with the guest's lock held. The state is cleared only after
// the record is stored, so a failed insert leaves the guest able to retry
// and a duplicate event queued behind this one finds no state.
func (e *Engine) complete(ctx context.Context, ev Event, st *models.ConversationState, comment string) (*models.Feedback, error) {
	if _, err := transition(ctx, st.CurrentStep(), eventFinish); err != nil || st.Rating == nil || !models.ValidRating(*st.Rating) {
		if clearErr := e.states.Clear(ctx, ev.UserID); clearErr != nil {
			zerolog.Ctx(ctx).Error().Err(clearErr).Msg("failed to clear lost session")
		}
		return nil, ErrLostSession
	}

	code, err := e.codes.Generate()
	if err != nil {
		return nil, err
	}

	now := e.now()
	record := &models.Feedback{
		Username:  ev.Username,
		Rating:    *st.Rating,
		Comment:   comment,
		PromoCode: code,
		ExpiresAt: promo.ExpiresAt(now, e.opts.PromoValidDays),
	}
	if ev.UserID != 0 {
		uid := ev.UserID
		record.UserID = &uid
	}

	if err := e.feedback.Insert(ctx, record); err != nil {
		return nil, err
	}

	if err := e.states.Clear(ctx, ev.UserID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint64("feedback_id", record.ID).Msg("failed to clear state after save")
	}
	return record, nil
}

// notifyStaff publishes the card in the background. Failures are logged and
// never reach the guest.
func (e *Engine) notifyStaff(record *models.Feedback) {
	if e.notifier == nil {
		return
	}

	card := notifier.FormatFeedbackCard(record)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := e.notifier.Publish(ctx, card); err != nil {
			e.log.Error().Err(err).Uint64("feedback_id", record.ID).Msg("staff notification failed")
		}
	}()
}

func (e *Engine) handleStats(ctx context.Context) []Reply {
	summary, err := e.stats.WindowStats(ctx, statsWindowDays)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to compute stats")
		return []Reply{{Text: e.opts.Texts.StatsFailed()}}
	}
	return []Reply{{Text: e.opts.Texts.Stats(summary)}}
}
