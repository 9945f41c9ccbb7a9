package portal

import "strings"

const DefaultLanguage = "en"

var rescheduleLinkText = map[string]string{
	"en": "Reschedule Appointment",
	"es": "Reprogramar cita",
}

// RescheduleLinkText returns the reschedule link label for a locale code such
// as "es" or "es-MX". Unknown codes fall back to English.
func RescheduleLinkText(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if t, ok := rescheduleLinkText[lang]; ok {
		return t
	}
	return rescheduleLinkText[DefaultLanguage]
}
