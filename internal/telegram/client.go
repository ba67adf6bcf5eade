package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Client is the Bot API with outbound calls throttled to stay under
// Telegram's global sending limit.
type Client struct {
	api     botAPI
	limiter *rate.Limiter
}

func NewClient(token string, perSecond float64) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return newClient(api, perSecond), nil
}

func newClient(api botAPI, perSecond float64) *Client {
	limit, burst := rate.Inf, 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(perSecond))
	}
	return &Client{api: api, limiter: rate.NewLimiter(limit, burst)}
}

// Username reports the bot account name, empty in tests.
func (c *Client) Username() string {
	if api, ok := c.api.(*tgbotapi.BotAPI); ok {
		return api.Self.UserName
	}
	return ""
}

func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.api.Send(msg)
	return err
}

func (c *Client) request(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.api.Request(msg)
	return err
}

// SendText sends plain text with no markup parsing.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, tgbotapi.NewMessage(chatID, text))
}
