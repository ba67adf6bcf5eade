package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"feedback-bot/internal/models"
	"feedback-bot/internal/promo"
	"feedback-bot/internal/repository"
	"feedback-bot/internal/state"
	"feedback-bot/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFeedback struct {
	mu        sync.Mutex
	records   []models.Feedback
	insertErr error
	delay     time.Duration
}

func (m *memoryFeedback) EnsureSchema(context.Context) error { return nil }

func (m *memoryFeedback) Insert(_ context.Context, fb *models.Feedback) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return &repository.StorageError{Op: "insert", Err: m.insertErr}
	}
	fb.ID = uint64(len(m.records) + 1)
	fb.CreatedAt = time.Now()
	m.records = append(m.records, *fb)
	return nil
}

func (m *memoryFeedback) FindSince(_ context.Context, since time.Time) ([]models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Feedback
	for _, r := range m.records {
		if !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryFeedback) MarkResolved(context.Context, uint64) error { return nil }

func (m *memoryFeedback) all() []models.Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Feedback(nil), m.records...)
}

func (m *memoryFeedback) setInsertErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertErr = err
}

type captureNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (c *captureNotifier) Publish(_ context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return c.err
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

type failingStats struct{}

func (failingStats) WindowStats(context.Context, int) (stats.Summary, error) {
	return stats.Summary{}, errors.New("sqlite: database is locked at /var/lib/bot.db")
}

type testEngine struct {
	*Engine
	states   *state.MemoryStore
	feedback *memoryFeedback
	notify   *captureNotifier
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	states := state.NewMemoryStore()
	feedback := &memoryFeedback{}
	notify := &captureNotifier{}
	e := NewEngine(states, feedback, promo.NewGenerator(), stats.NewAggregator(feedback), notify, Options{
		PromoValidDays: 30,
		Texts:          Texts{RestaurantName: "Test Bistro"},
	})
	t.Cleanup(e.Drain)
	return &testEngine{Engine: e, states: states, feedback: feedback, notify: notify}
}

func (te *testEngine) send(kind EventKind, user int64, payload string) []Reply {
	return te.Handle(context.Background(), Event{Kind: kind, UserID: user, Username: fmt.Sprintf("guest%d", user), Payload: payload})
}

func (te *testEngine) stateOf(t *testing.T, user int64) *models.ConversationState {
	t.Helper()
	st, err := te.states.Get(context.Background(), user)
	require.NoError(t, err)
	return st
}

func TestEngine_RatingThenComment(t *testing.T) {
	for r := 1; r <= 5; r++ {
		t.Run(fmt.Sprintf("rating %d", r), func(t *testing.T) {
			te := newTestEngine(t)
			const user = 100

			replies := te.send(EventStart, user, "")
			require.Len(t, replies, 1)
			assert.Equal(t, KeyboardRating, replies[0].Keyboard)
			assert.Contains(t, replies[0].Text, "Test Bistro")
			assert.Equal(t, models.StepAwaitingRating, te.stateOf(t, user).Step)

			replies = te.send(EventRating, user, fmt.Sprint(r))
			require.Len(t, replies, 2)
			assert.True(t, replies[0].ReplaceOriginal)
			assert.Equal(t, KeyboardSkip, replies[1].Keyboard)

			st := te.stateOf(t, user)
			require.NotNil(t, st)
			assert.Equal(t, models.StepAwaitingComment, st.Step)
			assert.Equal(t, r, *st.Rating)

			replies = te.send(EventText, user, "  Loved the dessert  ")
			require.Len(t, replies, 1)

			records := te.feedback.all()
			require.Len(t, records, 1)
			assert.Equal(t, r, records[0].Rating)
			assert.Equal(t, "Loved the dessert", records[0].Comment)
			assert.Equal(t, fmt.Sprintf("guest%d", user), records[0].Username)
			require.NotNil(t, records[0].UserID)
			assert.Equal(t, int64(user), *records[0].UserID)
			assert.False(t, records[0].Resolved)
			assert.Contains(t, replies[0].Text, records[0].PromoCode)
			assert.Contains(t, replies[0].Text, promo.FormatDate(records[0].ExpiresAt))

			assert.Nil(t, te.stateOf(t, user), "state cleared after completion")

			te.Drain()
			require.Equal(t, 1, te.notify.count())
			assert.Contains(t, te.notify.messages[0], records[0].PromoCode)
		})
	}
}

func TestEngine_InvalidRatingLeavesStateUnchanged(t *testing.T) {
	for _, payload := range []string{"0", "6", "-1", "abc", "", "3.5", "rate:3"} {
		t.Run(fmt.Sprintf("payload %q", payload), func(t *testing.T) {
			te := newTestEngine(t)
			const user = 7

			te.send(EventStart, user, "")
			before := te.stateOf(t, user)

			replies := te.send(EventRating, user, payload)
			require.Len(t, replies, 1)
			assert.True(t, replies[0].Alert)

			assert.Equal(t, before, te.stateOf(t, user))
			assert.Empty(t, te.feedback.all())
		})
	}
}

func TestEngine_InvalidRatingWithoutConversation(t *testing.T) {
	te := newTestEngine(t)

	replies := te.send(EventRating, 8, "9")
	require.Len(t, replies, 1)
	assert.True(t, replies[0].Alert)
	assert.Nil(t, te.stateOf(t, 8), "invalid selector must not bootstrap state")
}

func TestEngine_SkipComment(t *testing.T) {
	te := newTestEngine(t)
	const user = 11

	te.send(EventStart, user, "")
	te.send(EventRating, user, "4")
	replies := te.send(EventSkip, user, "")
	require.Len(t, replies, 1)

	records := te.feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Comment)
	assert.Equal(t, 4, records[0].Rating)
}

func TestEngine_WhitespaceCommentIsEmpty(t *testing.T) {
	te := newTestEngine(t)
	const user = 12

	te.send(EventRating, user, "2")
	te.send(EventText, user, "   \n\t ")

	records := te.feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Comment)
}

func TestEngine_RatingWithoutStartBootstraps(t *testing.T) {
	te := newTestEngine(t)
	const user = 13

	replies := te.send(EventRating, user, "5")
	require.Len(t, replies, 2)

	st := te.stateOf(t, user)
	require.NotNil(t, st)
	assert.Equal(t, models.StepAwaitingComment, st.Step)
	assert.Equal(t, 5, *st.Rating)
}

func TestEngine_RerateReplacesRating(t *testing.T) {
	te := newTestEngine(t)
	const user = 14

	te.send(EventRating, user, "2")
	te.send(EventRating, user, "5")
	te.send(EventSkip, user, "")

	records := te.feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Rating)
}

func TestEngine_TextOutsideCommentStepIgnored(t *testing.T) {
	te := newTestEngine(t)

	assert.Empty(t, te.send(EventText, 15, "hello?"))
	assert.Nil(t, te.stateOf(t, 15))

	te.send(EventStart, 15, "")
	assert.Empty(t, te.send(EventText, 15, "five stars"))
	assert.Equal(t, models.StepAwaitingRating, te.stateOf(t, 15).Step)
	assert.Empty(t, te.feedback.all())
}

func TestEngine_StartResetsConversation(t *testing.T) {
	te := newTestEngine(t)
	const user = 16

	te.send(EventRating, user, "3")
	te.send(EventStart, user, "")

	st := te.stateOf(t, user)
	require.NotNil(t, st)
	assert.Equal(t, models.StepAwaitingRating, st.Step)
	assert.Nil(t, st.Rating)
}

func TestEngine_LostSession(t *testing.T) {
	t.Run("comment step without rating", func(t *testing.T) {
		te := newTestEngine(t)
		const user = 20
		require.NoError(t, te.states.Set(context.Background(), user, &models.ConversationState{Step: models.StepAwaitingComment}))

		replies := te.send(EventText, user, "great")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "/start")
		assert.Empty(t, te.feedback.all())
		assert.Nil(t, te.stateOf(t, user))
	})

	t.Run("skip with no conversation", func(t *testing.T) {
		te := newTestEngine(t)

		replies := te.send(EventSkip, 21, "")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "/start")
		assert.Empty(t, te.feedback.all())
	})

	t.Run("skip while awaiting rating", func(t *testing.T) {
		te := newTestEngine(t)
		te.send(EventStart, 22, "")

		replies := te.send(EventSkip, 22, "")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "/start")
		assert.Empty(t, te.feedback.all())
		assert.Nil(t, te.stateOf(t, 22))
	})

	t.Run("out of range rating in state", func(t *testing.T) {
		te := newTestEngine(t)
		bad := 9
		require.NoError(t, te.states.Set(context.Background(), 23, &models.ConversationState{Step: models.StepAwaitingComment, Rating: &bad}))

		te.send(EventSkip, 23, "")
		assert.Empty(t, te.feedback.all())
	})
}

func TestEngine_DuplicateCompletionPersistsOnce(t *testing.T) {
	te := newTestEngine(t)
	te.feedback.delay = 20 * time.Millisecond
	const user = 30

	te.send(EventStart, user, "")
	te.send(EventRating, user, "5")

	var wg sync.WaitGroup
	replies := make([][]Reply, 4)
	for i := range replies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				replies[i] = te.send(EventSkip, user, "")
			} else {
				replies[i] = te.send(EventText, user, "same comment")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, te.feedback.all(), 1)

	codes := 0
	for _, r := range replies {
		for _, reply := range r {
			if strings.Contains(reply.Text, "promo code") {
				codes++
			}
		}
	}
	assert.Equal(t, 1, codes, "exactly one guest-facing code")

	te.Drain()
	assert.Equal(t, 1, te.notify.count())
}

func TestEngine_ConcurrentGuestsAreIsolated(t *testing.T) {
	te := newTestEngine(t)
	const guests = 50

	var wg sync.WaitGroup
	for i := 1; i <= guests; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			rating := int(user%5) + 1
			te.send(EventStart, user, "")
			te.send(EventRating, user, fmt.Sprint(rating))
			te.send(EventText, user, fmt.Sprintf("comment from %d", user))
		}(int64(i))
	}
	wg.Wait()

	records := te.feedback.all()
	require.Len(t, records, guests)
	for _, r := range records {
		require.NotNil(t, r.UserID)
		assert.Equal(t, int(*r.UserID%5)+1, r.Rating, "rating of guest %d", *r.UserID)
		assert.Equal(t, fmt.Sprintf("comment from %d", *r.UserID), r.Comment)
	}
}

func TestEngine_ExpiresAtFromCompletionTime(t *testing.T) {
	te := newTestEngine(t)
	te.now = func() time.Time { return time.Date(2026, 10, 19, 22, 30, 0, 0, time.UTC) }

	te.send(EventRating, 40, "3")
	te.send(EventSkip, 40, "")

	records := te.feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC), records[0].ExpiresAt)
}

func TestEngine_StorageFailureKeepsConversation(t *testing.T) {
	te := newTestEngine(t)
	const user = 50

	te.send(EventRating, user, "4")
	te.feedback.setInsertErr(errors.New("disk full"))

	replies := te.send(EventText, user, "nice")
	require.Len(t, replies, 1)
	assert.NotContains(t, replies[0].Text, "disk full")
	assert.Empty(t, te.feedback.all())
	assert.Equal(t, models.StepAwaitingComment, te.stateOf(t, user).Step)

	te.feedback.setInsertErr(nil)
	te.send(EventText, user, "nice")
	records := te.feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Rating)
	assert.Nil(t, te.stateOf(t, user))
}

func TestEngine_NotificationFailureDoesNotAffectGuest(t *testing.T) {
	te := newTestEngine(t)
	te.notify.err = errors.New("slack down")

	te.send(EventRating, 60, "1")
	replies := te.send(EventText, 60, "cold food")

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "promo code")
	assert.Len(t, te.feedback.all(), 1)
	assert.Nil(t, te.stateOf(t, 60))
}

func TestEngine_Stats(t *testing.T) {
	te := newTestEngine(t)

	replies := te.send(EventStats, 1, "")
	require.Len(t, replies, 1)
	assert.Equal(t, "Last 7 days: 0 review(s). Average rating: 0", replies[0].Text)

	te.send(EventRating, 2, "3")
	te.send(EventSkip, 2, "")
	te.send(EventRating, 3, "5")
	te.send(EventSkip, 3, "")

	replies = te.send(EventStats, 1, "")
	require.Len(t, replies, 1)
	assert.Equal(t, "Last 7 days: 2 review(s). Average rating: 4", replies[0].Text)
}

func TestEngine_StatsFailureHidesInternalError(t *testing.T) {
	te := newTestEngine(t)
	te.stats = failingStats{}

	replies := te.send(EventStats, 1, "")
	require.Len(t, replies, 1)
	assert.NotContains(t, replies[0].Text, "sqlite")
	assert.NotContains(t, replies[0].Text, "/var/lib")
}

func TestEngine_Help(t *testing.T) {
	te := newTestEngine(t)

	replies := te.send(EventHelp, 1, "")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "/start")
	assert.Nil(t, te.stateOf(t, 1))
}
