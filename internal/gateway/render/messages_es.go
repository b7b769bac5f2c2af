package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Spanish

	message.SetString(lang, "reply.operation_successful", "Operación completada con éxito.")
	message.SetString(lang, "reply.access_denied_untrusted", "El acceso al bot está denegado por pérdida de confianza.")
	message.SetString(lang, "reply.data_outdated", "Sus datos están desactualizados. Reenvíe un /hero nuevo desde el juego.")
	message.SetString(lang, "reply.rate_limited", "Está enviando mensajes demasiado rápido. Espere un momento.")
	message.SetString(lang, "reply.unrecognized", "Formato de mensaje no reconocido. Envíe /hero, /bag o /numbers.")
	message.SetString(lang, "reply.processing_error", "Ocurrió un error al procesar su solicitud.")
	message.SetString(lang, "menu.needs_hero", "Envíe su /hero para acceder al menú.")
	message.SetString(lang, "menu.title", "Menú del jugador:")
	message.SetString(lang, "menu.role_not_implemented", "Los menús por rol aún no están implementados.")
	message.SetString(lang, "menu.button.profile", "Perfil")
	message.SetString(lang, "menu.button.settings", "Ajustes")
	message.SetString(lang, "menu.button.info", "Información")
	message.SetString(lang, "menu.button.back", "Volver al menú")
	message.SetString(lang, "menu.settings.body", "Cambie su idioma con /set_en, /set_es o /set_ru.")
	message.SetString(lang, "menu.info.body", "Reenvíe sus informes /hero, /bag y /numbers desde Chat Wars para mantener sus datos al día.")
	message.SetString(lang, "profile.body", "Perfil: %s\nConfianza: %s\n\nÚltimo /hero: %s\nÚltimo /bag: %s\nÚltimo /numbers: %s")
	message.SetString(lang, "profile.never", "nunca")
	message.SetString(lang, "profile.just_now", "ahora mismo")
	message.SetString(lang, "profile.trust.trusted", "de confianza")
	message.SetString(lang, "profile.trust.untrusted", "sin confianza")
	message.SetString(lang, "profile.trust.unset", "sin verificar")
}
