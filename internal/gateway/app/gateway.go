package server

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/castellan/internal/gateway/domain"
	"github.com/louisbranch/castellan/internal/gateway/render"
	"github.com/louisbranch/castellan/internal/platform/id"
	"github.com/louisbranch/castellan/internal/telegram"
)

// Callback payloads for the inline menu keyboard.
const (
	callbackProfile  = "menu:profile"
	callbackSettings = "menu:settings"
	callbackInfo     = "menu:info"
	callbackBack     = "menu:back"
)

// Sender is the outbound Telegram surface the gateway needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

type admitter interface {
	Admit(identity string, now time.Time) bool
}

// Gateway routes inbound Telegram updates through admission, report
// classification, persistence, and reply rendering. One Gateway serves all
// identities; per-identity write ordering is the store's concern.
type Gateway struct {
	store           domain.Store
	journal         domain.Journal
	sender          Sender
	limiter         admitter
	gameBotUsername string
	clock           func() time.Time
	newID           func() (string, error)
}

// NewGateway constructs the update handler. A nil clock falls back to
// time.Now and a nil id generator to the platform default.
func NewGateway(store domain.Store, journal domain.Journal, sender Sender, limiter admitter, gameBotUsername string, clock func() time.Time, newID func() (string, error)) *Gateway {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Gateway{
		store:           store,
		journal:         journal,
		sender:          sender,
		limiter:         limiter,
		gameBotUsername: strings.TrimSpace(gameBotUsername),
		clock:           clock,
		newID:           newID,
	}
}

// HandleUpdate processes one inbound update. Errors never escape: every
// failure path replies, logs, or journals and returns.
func (g *Gateway) HandleUpdate(ctx context.Context, update telegram.Update) {
	switch {
	case update.Message != nil:
		g.handleMessage(ctx, *update.Message)
	case update.CallbackQuery != nil:
		g.handleCallback(ctx, *update.CallbackQuery)
	}
}

func (g *Gateway) handleMessage(ctx context.Context, msg telegram.Message) {
	if msg.From == nil || msg.Chat.Type != telegram.ChatTypePrivate {
		return
	}
	identity := strconv.FormatInt(msg.From.ID, 10)
	now := g.now()

	if g.limiter != nil && !g.limiter.Admit(identity, now) {
		g.reply(ctx, msg.Chat.ID, render.RateLimited(nil), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeRateLimited, "", now)
		return
	}

	switch {
	case g.isGameForward(msg):
		g.handleForward(ctx, msg, identity, now)
	case strings.HasPrefix(msg.Text, "/"):
		g.handleCommand(ctx, msg, identity, now)
	}
}

func (g *Gateway) isGameForward(msg telegram.Message) bool {
	return msg.ForwardFrom != nil && msg.ForwardFrom.Username == g.gameBotUsername
}

// handleForward is the report-processing flow: resolve the record first, and
// only classify for identities that already have one. First contact is
// registration-only no matter what the forward contains.
func (g *Gateway) handleForward(ctx context.Context, msg telegram.Message, identity string, now time.Time) {
	input := domain.NewUserInput{
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	record, created, err := g.store.GetOrCreateUser(ctx, identity, input, now)
	if err != nil {
		g.storageFailure(ctx, msg.Chat.ID, identity, nil, "resolve user", err, now)
		return
	}
	if created {
		g.reply(ctx, msg.Chat.ID, render.OnboardingBroadcast, nil)
		g.reply(ctx, msg.Chat.ID, render.LanguagePromptBroadcast, nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "registered", now)
		return
	}

	loc := render.PrinterFor(record.Language)
	switch domain.Classify(msg.Text) {
	case domain.SnapshotHero:
		if domain.ForwardExpired(msg.ForwardTime(), now) {
			g.reply(ctx, msg.Chat.ID, render.OnboardingBroadcast, nil)
			g.journalOutcome(ctx, identity, domain.OutcomeExpired, "hero", now)
			return
		}
		trust := domain.DeriveTrust(msg.Text)
		if err := g.store.UpdateHeroSnapshot(ctx, identity, msg.Text, trust, now); err != nil {
			g.storageFailure(ctx, msg.Chat.ID, identity, loc, "update hero snapshot", err, now)
			return
		}
		log.Printf("gateway: trust status for user %s set to %s", identity, trust)
		if trust == domain.TrustTrusted {
			g.reply(ctx, msg.Chat.ID, render.SuccessBroadcast, nil)
		} else {
			g.reply(ctx, msg.Chat.ID, render.UnauthorizedBroadcast, nil)
		}
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "hero", now)
	case domain.SnapshotEquipment:
		if err := g.store.UpdateEquipmentSnapshot(ctx, identity, msg.Text, now); err != nil {
			g.storageFailure(ctx, msg.Chat.ID, identity, loc, "update equipment snapshot", err, now)
			return
		}
		g.reply(ctx, msg.Chat.ID, render.OperationSuccessful(loc), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "equipment", now)
	case domain.SnapshotNumbers:
		if err := g.store.UpdateNumbersSnapshot(ctx, identity, msg.Text, now); err != nil {
			g.storageFailure(ctx, msg.Chat.ID, identity, loc, "update numbers snapshot", err, now)
			return
		}
		g.reply(ctx, msg.Chat.ID, render.OperationSuccessful(loc), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "numbers", now)
	default:
		g.reply(ctx, msg.Chat.ID, render.UnrecognizedFormat(loc), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeUnrecognized, "forward", now)
	}
}

func (g *Gateway) handleCommand(ctx context.Context, msg telegram.Message, identity string, now time.Time) {
	command := commandName(msg.Text)
	switch command {
	case "/start":
		g.reply(ctx, msg.Chat.ID, render.OnboardingBroadcast, nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "start", now)
	case "/menu":
		g.handleMenu(ctx, msg, identity, now)
	case "/set_en":
		g.handleSetLanguage(ctx, msg, identity, domain.LanguageEN, now)
	case "/set_es":
		g.handleSetLanguage(ctx, msg, identity, domain.LanguageES, now)
	case "/set_ru":
		g.handleSetLanguage(ctx, msg, identity, domain.LanguageRU, now)
	case "/set_language":
		g.handleLanguagePrompt(ctx, msg, identity, now)
	default:
		g.reply(ctx, msg.Chat.ID, render.UnrecognizedFormat(nil), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeUnrecognized, command, now)
	}
}

func (g *Gateway) handleMenu(ctx context.Context, msg telegram.Message, identity string, now time.Time) {
	record, err := g.store.FindUser(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		g.reply(ctx, msg.Chat.ID, render.MenuNeedsHero(nil), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "menu", now)
		return
	}
	if err != nil {
		g.storageFailure(ctx, msg.Chat.ID, identity, nil, "load user for menu", err, now)
		return
	}

	loc := render.PrinterFor(record.Language)
	text, keyboard := g.menuView(record, loc, now)
	g.reply(ctx, msg.Chat.ID, text, keyboard)
	g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "menu", now)
}

// menuView applies the access policy and returns the menu body for the
// record's role, or the denial text when access is refused.
func (g *Gateway) menuView(record domain.UserRecord, loc render.Localizer, now time.Time) (string, *telegram.InlineKeyboardMarkup) {
	decision := domain.EvaluateAccess(record, now)
	if !decision.Allowed {
		switch decision.Reason {
		case domain.AccessStaleData:
			return render.DataOutdated(loc), nil
		default:
			return render.AccessDeniedUntrusted(loc), nil
		}
	}
	if record.Role != domain.RolePlayer {
		return render.MenuRoleNotImplemented(loc), nil
	}
	return render.MenuTitle(loc), menuKeyboard(loc)
}

func (g *Gateway) handleSetLanguage(ctx context.Context, msg telegram.Message, identity string, language string, now time.Time) {
	err := g.store.SetLanguage(ctx, identity, language)
	if errors.Is(err, domain.ErrNotFound) {
		g.reply(ctx, msg.Chat.ID, render.OnboardingBroadcast, nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "set_language", now)
		return
	}
	if err != nil {
		g.storageFailure(ctx, msg.Chat.ID, identity, nil, "set language", err, now)
		return
	}
	g.reply(ctx, msg.Chat.ID, render.OperationSuccessful(render.PrinterFor(language)), nil)
	g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "set_language:"+language, now)
}

func (g *Gateway) handleLanguagePrompt(ctx context.Context, msg telegram.Message, identity string, now time.Time) {
	_, err := g.store.FindUser(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		g.reply(ctx, msg.Chat.ID, render.OnboardingBroadcast, nil)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "language_prompt", now)
		return
	}
	if err != nil {
		g.storageFailure(ctx, msg.Chat.ID, identity, nil, "load user for language prompt", err, now)
		return
	}
	g.reply(ctx, msg.Chat.ID, render.LanguagePromptBroadcast, nil)
	g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "language_prompt", now)
}

func (g *Gateway) handleCallback(ctx context.Context, callback telegram.CallbackQuery) {
	defer g.answerCallback(ctx, callback.ID)

	if callback.Message == nil {
		return
	}
	identity := strconv.FormatInt(callback.From.ID, 10)
	now := g.now()
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	record, err := g.store.FindUser(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		g.edit(ctx, chatID, messageID, render.MenuNeedsHero(nil), nil)
		return
	}
	if err != nil {
		log.Printf("gateway: load user for callback %q: %v", callback.Data, err)
		g.edit(ctx, chatID, messageID, render.ProcessingError(nil), nil)
		g.journalOutcome(ctx, identity, domain.OutcomeStorageError, "callback", now)
		return
	}

	loc := render.PrinterFor(record.Language)
	switch callback.Data {
	case callbackProfile:
		profile := render.Profile{
			DisplayName: record.DisplayName(),
			TrustStatus: string(record.Trust),
			HeroAt:      record.Hero.UpdatedAt,
			EquipmentAt: record.Equipment.UpdatedAt,
			NumbersAt:   record.Numbers.UpdatedAt,
			Now:         now,
		}
		g.edit(ctx, chatID, messageID, render.RenderProfile(loc, profile), backKeyboard(loc))
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "callback:profile", now)
	case callbackSettings:
		g.edit(ctx, chatID, messageID, render.SettingsBody(loc), backKeyboard(loc))
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "callback:settings", now)
	case callbackInfo:
		g.edit(ctx, chatID, messageID, render.InfoBody(loc), backKeyboard(loc))
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "callback:info", now)
	case callbackBack:
		text, keyboard := g.menuView(record, loc, now)
		g.edit(ctx, chatID, messageID, text, keyboard)
		g.journalOutcome(ctx, identity, domain.OutcomeProcessed, "callback:back", now)
	default:
		g.journalOutcome(ctx, identity, domain.OutcomeUnrecognized, "callback:"+callback.Data, now)
	}
}

func (g *Gateway) storageFailure(ctx context.Context, chatID int64, identity string, loc render.Localizer, operation string, err error, now time.Time) {
	log.Printf("gateway: %s for user %s: %v", operation, identity, err)
	g.reply(ctx, chatID, render.ProcessingError(loc), nil)
	g.journalOutcome(ctx, identity, domain.OutcomeStorageError, operation, now)
}

func (g *Gateway) reply(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) {
	if g.sender == nil {
		return
	}
	if err := g.sender.SendMessage(ctx, chatID, text, keyboard); err != nil {
		log.Printf("gateway: send reply to chat %d: %v", chatID, err)
	}
}

func (g *Gateway) edit(ctx context.Context, chatID int64, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) {
	if g.sender == nil {
		return
	}
	if err := g.sender.EditMessageText(ctx, chatID, messageID, text, keyboard); err != nil {
		log.Printf("gateway: edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (g *Gateway) answerCallback(ctx context.Context, callbackID string) {
	if g.sender == nil {
		return
	}
	if err := g.sender.AnswerCallbackQuery(ctx, callbackID); err != nil {
		log.Printf("gateway: answer callback %s: %v", callbackID, err)
	}
}

// journalOutcome appends the terminal state of one handled event. Journal
// failures are logged and never alter the user-facing result.
func (g *Gateway) journalOutcome(ctx context.Context, identity string, outcome domain.Outcome, detail string, now time.Time) {
	if g.journal == nil {
		return
	}
	entryID, err := g.newID()
	if err != nil {
		log.Printf("gateway: new journal id: %v", err)
		return
	}
	entry := domain.JournalEntry{
		ID:        entryID,
		Identity:  identity,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: now,
	}
	if err := g.journal.AppendJournal(ctx, entry); err != nil {
		log.Printf("gateway: append journal for user %s: %v", identity, err)
	}
}

func (g *Gateway) now() time.Time {
	if g.clock == nil {
		return time.Now().UTC()
	}
	return g.clock().UTC()
}

func menuKeyboard(loc render.Localizer) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: render.ButtonProfile(loc), CallbackData: callbackProfile},
		{Text: render.ButtonSettings(loc), CallbackData: callbackSettings},
		{Text: render.ButtonInfo(loc), CallbackData: callbackInfo},
	}}}
}

func backKeyboard(loc render.Localizer) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: render.ButtonBack(loc), CallbackData: callbackBack},
	}}}
}

func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	command := fields[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	return command
}
