// Package telegram is a minimal Telegram Bot API client covering the
// long-poll and messaging surface the gateway needs.
package telegram

import "time"

// ChatTypePrivate marks a direct conversation with the bot.
const ChatTypePrivate = "private"

// Update is one inbound event from the Bot API.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound or edited chat message.
type Message struct {
	MessageID   int64  `json:"message_id"`
	From        *User  `json:"from,omitempty"`
	Chat        Chat   `json:"chat"`
	Date        int64  `json:"date,omitempty"`
	Text        string `json:"text,omitempty"`
	ForwardFrom *User  `json:"forward_from,omitempty"`
	ForwardDate int64  `json:"forward_date,omitempty"`
}

// ForwardTime returns the original send time of a forwarded message, or the
// zero time when the message is not a forward.
func (m Message) ForwardTime() time.Time {
	if m.ForwardDate == 0 {
		return time.Time{}
	}
	return time.Unix(m.ForwardDate, 0).UTC()
}

// User is a Telegram account.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one button on an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}
