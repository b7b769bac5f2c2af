package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Russian

	message.SetString(lang, "reply.operation_successful", "Операция выполнена успешно.")
	message.SetString(lang, "reply.access_denied_untrusted", "Доступ к боту запрещён из-за потери доверия.")
	message.SetString(lang, "reply.data_outdated", "Ваши данные устарели. Перешлите новый /hero из игры.")
	message.SetString(lang, "reply.rate_limited", "Вы отправляете сообщения слишком быстро. Подождите немного.")
	message.SetString(lang, "reply.unrecognized", "Неопознанный формат сообщения. Отправьте /hero, /bag или /numbers.")
	message.SetString(lang, "reply.processing_error", "Произошла ошибка при обработке вашего запроса.")
	message.SetString(lang, "menu.needs_hero", "Отправьте свой /hero, чтобы открыть меню.")
	message.SetString(lang, "menu.title", "Меню игрока:")
	message.SetString(lang, "menu.role_not_implemented", "Меню для других ролей ещё не реализованы.")
	message.SetString(lang, "menu.button.profile", "Профиль")
	message.SetString(lang, "menu.button.settings", "Настройки")
	message.SetString(lang, "menu.button.info", "Информация")
	message.SetString(lang, "menu.button.back", "Назад в меню")
	message.SetString(lang, "menu.settings.body", "Смените язык командой /set_en, /set_es или /set_ru.")
	message.SetString(lang, "menu.info.body", "Пересылайте отчёты /hero, /bag и /numbers из Chat Wars, чтобы данные оставались актуальными.")
	message.SetString(lang, "profile.body", "Профиль: %s\nДоверие: %s\n\nПоследний /hero: %s\nПоследний /bag: %s\nПоследний /numbers: %s")
	message.SetString(lang, "profile.never", "никогда")
	message.SetString(lang, "profile.just_now", "только что")
	message.SetString(lang, "profile.trust.trusted", "доверенный")
	message.SetString(lang, "profile.trust.untrusted", "недоверенный")
	message.SetString(lang, "profile.trust.unset", "не подтверждён")
}
