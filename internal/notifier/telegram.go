package notifier

import "context"

// TextSender delivers plain text to a chat. The Telegram client implements it.
type TextSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier sends staff messages to the managers' chat.
type TelegramNotifier struct {
	sender TextSender
	chatID int64
}

func NewTelegramNotifier(sender TextSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID}
}

func (n *TelegramNotifier) Publish(ctx context.Context, message string) error {
	return n.sender.SendText(ctx, n.chatID, message)
}
