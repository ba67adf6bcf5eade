package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"feedback-bot/internal/models"
	"feedback-bot/internal/promo"
)

// FormatFeedbackCard renders the staff summary of a completed conversation.
// Plain text so every channel can show it without escaping.
func FormatFeedbackCard(fb *models.Feedback) string {
	guest := "anonymous"
	if fb.UserID != nil {
		guest = strconv.FormatInt(*fb.UserID, 10)
	}
	handle := "-"
	if fb.Username != "" {
		handle = "@" + fb.Username
	}
	comment := fb.Comment
	if comment == "" {
		comment = "—"
	}

	var b strings.Builder
	b.WriteString("📝 New feedback\n")
	fmt.Fprintf(&b, "Guest: %s (%s)\n", guest, handle)
	fmt.Fprintf(&b, "Rating: %d %s\n", fb.Rating, strings.Repeat("⭐", fb.Rating))
	fmt.Fprintf(&b, "Comment: %s\n", comment)
	fmt.Fprintf(&b, "Promo code: %s\n", fb.PromoCode)
	fmt.Fprintf(&b, "Valid until: %s", promo.FormatDate(fb.ExpiresAt))
	return b.String()
}
