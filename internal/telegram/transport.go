package telegram

import (
	"context"
	"strings"
	"sync"

	"feedback-bot/internal/conversation"
	"feedback-bot/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler consumes decoded guest events.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) []conversation.Reply
}

// Transport long-polls Telegram and runs each update in its own goroutine.
type Transport struct {
	client  *Client
	handler Handler
	log     zerolog.Logger
	wg      sync.WaitGroup
}

func NewTransport(client *Client, handler Handler) *Transport {
	return &Transport{
		client:  client,
		handler: handler,
		log:     logger.With("telegram"),
	}
}

// target is where replies to one update go.
type target struct {
	chatID     int64
	messageID  int
	callbackID string
}

// Run polls until ctx is cancelled, then waits for in-flight updates.
func (t *Transport) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := t.client.api.GetUpdatesChan(u)

	t.log.Info().Str("bot", t.client.Username()).Msg("polling for updates")
	for {
		select {
		case <-ctx.Done():
			t.client.api.StopReceivingUpdates()
			t.wg.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return
			}
			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				t.dispatch(context.WithoutCancel(ctx), update)
			}()
		}
	}
}

func (t *Transport) dispatch(ctx context.Context, update tgbotapi.Update) {
	ev, dst, ok := decode(update)
	if !ok {
		if dst.callbackID != "" {
			t.answerCallback(ctx, dst.callbackID)
		}
		return
	}
	ev.ID = uuid.NewString()

	replies := t.handler.Handle(ctx, ev)
	t.render(ctx, dst, replies)
}

// decode maps an update onto an engine event. ok is false for updates the
// bot does not react to.
func decode(update tgbotapi.Update) (conversation.Event, target, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		dst := target{callbackID: q.ID}
		if q.Message != nil && q.Message.Chat != nil {
			dst.chatID = q.Message.Chat.ID
			dst.messageID = q.Message.MessageID
		} else if q.From != nil {
			dst.chatID = q.From.ID
		}
		if q.From == nil {
			return conversation.Event{}, dst, false
		}

		ev := conversation.Event{UserID: q.From.ID, Username: q.From.UserName}
		switch {
		case strings.HasPrefix(q.Data, ratePrefix):
			ev.Kind = conversation.EventRating
			ev.Payload = strings.TrimPrefix(q.Data, ratePrefix)
		case q.Data == skipCommentData:
			ev.Kind = conversation.EventSkip
		default:
			return conversation.Event{}, dst, false
		}
		return ev, dst, true

	case update.Message != nil:
		m := update.Message
		if m.From == nil || m.Chat == nil {
			return conversation.Event{}, target{}, false
		}
		dst := target{chatID: m.Chat.ID}
		ev := conversation.Event{UserID: m.From.ID, Username: m.From.UserName}

		if m.IsCommand() {
			switch m.Command() {
			case "start":
				ev.Kind = conversation.EventStart
			case "help":
				ev.Kind = conversation.EventHelp
			case "stats":
				ev.Kind = conversation.EventStats
			default:
				return conversation.Event{}, dst, false
			}
			return ev, dst, true
		}

		ev.Kind = conversation.EventText
		ev.Payload = m.Text
		return ev, dst, true
	}
	return conversation.Event{}, target{}, false
}

func (t *Transport) render(ctx context.Context, dst target, replies []conversation.Reply) {
	answered := false
	for _, reply := range replies {
		var err error
		switch {
		case reply.Alert && dst.callbackID != "" && !answered:
			err = t.client.request(ctx, tgbotapi.NewCallbackWithAlert(dst.callbackID, reply.Text))
			answered = true
		case reply.ReplaceOriginal && dst.messageID != 0:
			edit := tgbotapi.NewEditMessageText(dst.chatID, dst.messageID, reply.Text)
			edit.ParseMode = tgbotapi.ModeHTML
			err = t.client.send(ctx, edit)
		default:
			msg := tgbotapi.NewMessage(dst.chatID, reply.Text)
			msg.ParseMode = tgbotapi.ModeHTML
			switch reply.Keyboard {
			case conversation.KeyboardRating:
				msg.ReplyMarkup = ratingKeyboard()
			case conversation.KeyboardSkip:
				msg.ReplyMarkup = skipKeyboard()
			}
			err = t.client.send(ctx, msg)
		}
		if err != nil {
			t.log.Error().Err(err).Int64("chat_id", dst.chatID).Msg("failed to send reply")
		}
	}

	if dst.callbackID != "" && !answered {
		t.answerCallback(ctx, dst.callbackID)
	}
}

// answerCallback stops the button's loading spinner.
func (t *Transport) answerCallback(ctx context.Context, id string) {
	if err := t.client.request(ctx, tgbotapi.NewCallback(id, "")); err != nil {
		t.log.Warn().Err(err).Msg("failed to answer callback")
	}
}
