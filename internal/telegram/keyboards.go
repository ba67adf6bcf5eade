package telegram

import (
	"strconv"
	"strings"

	"feedback-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	ratePrefix       = "rate:"
	skipCommentData  = "skip_comment"
	skipCommentLabel = "Skip"
)

func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, models.MaxRating)
	for r := models.MinRating; r <= models.MaxRating; r++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strings.Repeat("⭐️", r), ratePrefix+strconv.Itoa(r)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func skipKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(skipCommentLabel, skipCommentData)),
	)
}
