// Package timeouts defines shared timeout constants used across the process.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// TelegramSend caps the time allowed for one outbound Telegram API call
// (sendMessage, editMessageText, answerCallbackQuery).
const TelegramSend = 10 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
