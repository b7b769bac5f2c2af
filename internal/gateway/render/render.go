// Package render produces the gateway's Telegram reply copy. Broadcast
// messages ship in all three languages at once; everything else is localized
// through x/text catalogs with hardcoded English fallbacks.
package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Broadcast replies are sent verbatim regardless of the recipient's stored
// language, matching the original gateway copy.
const (
	// OnboardingBroadcast asks the player to forward a current /hero report.
	OnboardingBroadcast = "To access the bot's functionality, please send your current /hero from Chat Wars.\n\n" +
		"Para acceder a la funcionalidad del bot, envíe su /hero actual desde Chat Wars.\n\n" +
		"Для получения доступа к функционалу бота, отправьте актуальный /hero из Chat Wars."

	// SuccessBroadcast confirms a trusted hero report was stored.
	SuccessBroadcast = "Data successfully updated.\n\n" +
		"Datos actualizados con éxito.\n\n" +
		"Данные обновлены успешно."

	// UnauthorizedBroadcast tells players from other castles they are not admitted.
	UnauthorizedBroadcast = "Access is allowed only for Red Castle players.\n\n" +
		"El acceso está permitido solo para los jugadores del Castillo Rojo.\n\n" +
		"Доступ разрешён только для игроков красного замка."

	// LanguagePromptBroadcast lists the language selection commands.
	LanguagePromptBroadcast = "Please select a language by using /set_en.\n\n" +
		"Por favor seleccione un idioma usando /set_es.\n\n" +
		"Пожалуйста, выберите язык, используя /set_ru."
)

const (
	defaultOperationSuccessful = "Operation completed successfully."
	defaultAccessDenied        = "Access to the bot is denied due to loss of trust."
	defaultDataOutdated        = "Your data is outdated. Please forward a new /hero from the game."
	defaultRateLimited         = "You're sending messages too quickly. Please wait a moment."
	defaultUnrecognized        = "Unrecognized message format. Please send /hero, /bag, or /numbers."
	defaultProcessingError     = "An error occurred while processing your request."
)

var supportedTags = map[string]language.Tag{
	"en": language.English,
	"es": language.Spanish,
	"ru": language.Russian,
}

// PrinterFor returns a message printer for the stored language code.
// Unsupported codes fall back to English.
func PrinterFor(code string) *message.Printer {
	tag, ok := supportedTags[normalizeToken(code)]
	if !ok {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// OperationSuccessful confirms a stored update in the recipient's language.
func OperationSuccessful(loc Localizer) string {
	return localizeWithFallback(loc, "reply.operation_successful", defaultOperationSuccessful)
}

// AccessDeniedUntrusted explains a denial caused by untrusted status.
func AccessDeniedUntrusted(loc Localizer) string {
	return localizeWithFallback(loc, "reply.access_denied_untrusted", defaultAccessDenied)
}

// DataOutdated asks for a fresh hero report after a staleness denial.
func DataOutdated(loc Localizer) string {
	return localizeWithFallback(loc, "reply.data_outdated", defaultDataOutdated)
}

// RateLimited asks the sender to slow down.
func RateLimited(loc Localizer) string {
	return localizeWithFallback(loc, "reply.rate_limited", defaultRateLimited)
}

// UnrecognizedFormat explains that a forwarded report matched no known kind.
func UnrecognizedFormat(loc Localizer) string {
	return localizeWithFallback(loc, "reply.unrecognized", defaultUnrecognized)
}

// ProcessingError is the generic notice for storage failures.
func ProcessingError(loc Localizer) string {
	return localizeWithFallback(loc, "reply.processing_error", defaultProcessingError)
}

// MenuNeedsHero prompts for a hero report before the menu opens.
func MenuNeedsHero(loc Localizer) string {
	return localizeWithFallback(loc, "menu.needs_hero", "Please send your /hero to access the menu.")
}

// MenuTitle is the heading above the player menu keyboard.
func MenuTitle(loc Localizer) string {
	return localizeWithFallback(loc, "menu.title", "Player menu:")
}

// MenuRoleNotImplemented covers roles without a dedicated menu.
func MenuRoleNotImplemented(loc Localizer) string {
	return localizeWithFallback(loc, "menu.role_not_implemented", "Role-specific menus are not implemented yet.")
}

// ButtonProfile labels the profile menu button.
func ButtonProfile(loc Localizer) string {
	return localizeWithFallback(loc, "menu.button.profile", "Profile")
}

// ButtonSettings labels the settings menu button.
func ButtonSettings(loc Localizer) string {
	return localizeWithFallback(loc, "menu.button.settings", "Settings")
}

// ButtonInfo labels the info menu button.
func ButtonInfo(loc Localizer) string {
	return localizeWithFallback(loc, "menu.button.info", "Info")
}

// ButtonBack labels the back-to-menu button.
func ButtonBack(loc Localizer) string {
	return localizeWithFallback(loc, "menu.button.back", "Back to Menu")
}

// SettingsBody is the settings panel text.
func SettingsBody(loc Localizer) string {
	return localizeWithFallback(loc, "menu.settings.body", "Change your language with /set_en, /set_es, or /set_ru.")
}

// InfoBody is the info panel text.
func InfoBody(loc Localizer) string {
	return localizeWithFallback(loc, "menu.info.body", "Forward your /hero, /bag, and /numbers reports from Chat Wars to keep your data current.")
}

const defaultProfileBody = "Profile: %s\nTrust: %s\n\nLast /hero: %s\nLast /bag: %s\nLast /numbers: %s"

// Profile is one profile panel render request.
type Profile struct {
	DisplayName string
	TrustStatus string
	HeroAt      time.Time
	EquipmentAt time.Time
	NumbersAt   time.Time
	Now         time.Time
}

// RenderProfile returns the profile panel text for one user record.
func RenderProfile(loc Localizer, profile Profile) string {
	args := []any{
		profile.DisplayName,
		localizedTrust(loc, profile.TrustStatus),
		snapshotAge(loc, profile.HeroAt, profile.Now),
		snapshotAge(loc, profile.EquipmentAt, profile.Now),
		snapshotAge(loc, profile.NumbersAt, profile.Now),
	}
	if loc == nil {
		return fmt.Sprintf(defaultProfileBody, args...)
	}
	body := loc.Sprintf("profile.body", args...)
	if strings.HasPrefix(body, "profile.body") {
		return fmt.Sprintf(defaultProfileBody, args...)
	}
	return body
}

func localizedTrust(loc Localizer, raw string) string {
	key := "profile.trust.unset"
	fallback := "not verified"
	switch normalizeToken(raw) {
	case "trusted":
		key = "profile.trust.trusted"
		fallback = "trusted"
	case "untrusted":
		key = "profile.trust.untrusted"
		fallback = "untrusted"
	}
	return localizeWithFallback(loc, key, fallback)
}

func snapshotAge(loc Localizer, at time.Time, now time.Time) string {
	if at.IsZero() {
		return localizeWithFallback(loc, "profile.never", "never")
	}
	age := now.Sub(at)
	if age < time.Minute {
		return localizeWithFallback(loc, "profile.just_now", "just now")
	}
	days := int(age.Hours()) / 24
	hours := int(age.Hours()) % 24
	minutes := int(age.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
