package conversation

import (
	"fmt"
	"strconv"

	"feedback-bot/internal/stats"
)

// Texts is everything the engine says to a guest.
type Texts struct {
	RestaurantName string
}

func (t Texts) RatingPrompt() string {
	return fmt.Sprintf("Hello! Please rate your visit to %s.\nChoose from 1 to 5 stars ⭐️:", t.RestaurantName)
}

func (t Texts) Help() string {
	return "I collect your rating and feedback and pass it to the managers.\n\n" +
		"<b>Commands:</b>\n" +
		"/start — start over\n" +
		"/help — help\n" +
		"/stats — statistics for the last 7 days (for managers)"
}

func (t Texts) InvalidRating() string {
	return "Rating error, please press one of the star buttons."
}

func (t Texts) RatingThanks(rating int) string {
	return fmt.Sprintf("Thank you for the rating: <b>%d ⭐️</b>\n"+
		"Please leave a short comment (what you liked or what we could improve).", rating)
}

func (t Texts) CommentPrompt() string {
	return "If you'd rather skip the comment, press the button:"
}

func (t Texts) LostSession() string {
	return "Looks like we lost your rating. Press /start and let's try again."
}

func (t Texts) Completed(code, expires string) string {
	return "Thank you for your feedback! 💚\n" +
		fmt.Sprintf("Your personal promo code: <code>%s</code>\n", code) +
		fmt.Sprintf("Valid until: <b>%s</b>\n\n", expires) +
		"Show this code to your waiter on your next visit."
}

func (t Texts) SaveFailed() string {
	return "Sorry, we couldn't save your feedback. Please send your comment again in a moment."
}

func (t Texts) Stats(s stats.Summary) string {
	avg := strconv.FormatFloat(s.Average, 'f', -1, 64)
	return fmt.Sprintf("Last %d days: %d review(s). Average rating: %s", s.Days, s.Count, avg)
}

func (t Texts) StatsFailed() string {
	return "Couldn't load statistics right now. Please try again later."
}

func (t Texts) Unavailable() string {
	return "Something went wrong on our side. Please try again."
}
