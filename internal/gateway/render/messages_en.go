package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "reply.operation_successful", defaultOperationSuccessful)
	message.SetString(lang, "reply.access_denied_untrusted", defaultAccessDenied)
	message.SetString(lang, "reply.data_outdated", defaultDataOutdated)
	message.SetString(lang, "reply.rate_limited", defaultRateLimited)
	message.SetString(lang, "reply.unrecognized", defaultUnrecognized)
	message.SetString(lang, "reply.processing_error", defaultProcessingError)
	message.SetString(lang, "menu.needs_hero", "Please send your /hero to access the menu.")
	message.SetString(lang, "menu.title", "Player menu:")
	message.SetString(lang, "menu.role_not_implemented", "Role-specific menus are not implemented yet.")
	message.SetString(lang, "menu.button.profile", "Profile")
	message.SetString(lang, "menu.button.settings", "Settings")
	message.SetString(lang, "menu.button.info", "Info")
	message.SetString(lang, "menu.button.back", "Back to Menu")
	message.SetString(lang, "menu.settings.body", "Change your language with /set_en, /set_es, or /set_ru.")
	message.SetString(lang, "menu.info.body", "Forward your /hero, /bag, and /numbers reports from Chat Wars to keep your data current.")
	message.SetString(lang, "profile.body", defaultProfileBody)
	message.SetString(lang, "profile.never", "never")
	message.SetString(lang, "profile.just_now", "just now")
	message.SetString(lang, "profile.trust.trusted", "trusted")
	message.SetString(lang, "profile.trust.untrusted", "untrusted")
	message.SetString(lang, "profile.trust.unset", "not verified")
}
