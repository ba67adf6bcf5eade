package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts staff messages to a Slack channel.
type SlackNotifier struct {
	api       slackPoster
	channelID string
}

func NewSlackNotifier(botToken, channelID string, opts ...slack.Option) *SlackNotifier {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	opts = append([]slack.Option{slack.OptionHTTPClient(httpClient)}, opts...)
	return &SlackNotifier{
		api:       slack.New(botToken, opts...),
		channelID: channelID,
	}
}

func (s *SlackNotifier) Publish(ctx context.Context, message string) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channelID, slack.MsgOptionText(message, false))
	return err
}
