package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/castellan/internal/platform/timeouts"
)

// DefaultAPIBaseURL is the public Bot API endpoint.
const DefaultAPIBaseURL = "https://api.telegram.org"

// pollGrace pads the HTTP deadline past the server-side long-poll window.
const pollGrace = 5 * time.Second

// Client calls the Telegram Bot API over HTTPS.
type Client struct {
	apiBaseURL string
	token      string
	httpClient *http.Client
}

// NewClient creates a Bot API client for the given token. A nil http client
// falls back to http.DefaultClient.
func NewClient(apiBaseURL, token string, client *http.Client) (*Client, error) {
	apiBaseURL = strings.TrimRight(strings.TrimSpace(apiBaseURL), "/")
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		apiBaseURL: apiBaseURL,
		token:      token,
		httpClient: client,
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	TimeoutSeconds int64    `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type editMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

type deleteWebhookRequest struct {
	DropPendingUpdates bool `json:"drop_pending_updates,omitempty"`
}

// GetUpdates long-polls for inbound updates starting at offset. The HTTP
// deadline is the poll timeout plus a small grace period.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	if timeout < 0 {
		timeout = 0
	}
	payload := getUpdatesRequest{
		Offset:         offset,
		TimeoutSeconds: int64(timeout / time.Second),
		AllowedUpdates: []string{"message", "callback_query"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, timeout+pollGrace, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends text to a chat, optionally with an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	payload := sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}
	return c.call(ctx, "sendMessage", payload, timeouts.TelegramSend, nil)
}

// EditMessageText replaces the text and keyboard of an existing message.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *InlineKeyboardMarkup) error {
	payload := editMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}
	return c.call(ctx, "editMessageText", payload, timeouts.TelegramSend, nil)
}

// AnswerCallbackQuery closes the progress indicator on a pressed button.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	payload := answerCallbackQueryRequest{CallbackQueryID: callbackQueryID}
	return c.call(ctx, "answerCallbackQuery", payload, timeouts.TelegramSend, nil)
}

// DeleteWebhook removes any configured webhook so long polling can take over.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	payload := deleteWebhookRequest{DropPendingUpdates: dropPendingUpdates}
	return c.call(ctx, "deleteWebhook", payload, timeouts.TelegramSend, nil)
}

func (c *Client) call(ctx context.Context, method string, payload any, timeout time.Duration, result any) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("telegram client is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := c.apiBaseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, c.redactToken(err))
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s returned %s", method, resp.Status)
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s returned %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// redactToken scrubs the bot token from transport errors, which embed the
// request URL.
func (c *Client) redactToken(err error) error {
	if err == nil || c.token == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), c.token, "<token>"))
}
