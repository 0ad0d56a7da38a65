package utils

import "golang.org/x/text/language"

const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Arabic,
})

// PreferredLanguage picks en or ar from an Accept-Language header, falling back
// to fallback when the header is empty or unparseable.
func PreferredLanguage(acceptLanguage, fallback string) string {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if idx == 1 {
		return LangArabic
	}
	return LangEnglish
}

var kindTitles = map[string]map[ErrorKind]string{
	LangEnglish: {
		KindValidation:    "Invalid request",
		KindNotFound:      "Not found",
		KindConflict:      "Conflict",
		KindInvalidState:  "Operation not allowed in the current state",
		KindAuthorization: "You do not have permission",
		KindInternal:      "Internal error",
	},
	LangArabic: {
		KindValidation:    "طلب غير صالح",
		KindNotFound:      "غير موجود",
		KindConflict:      "تعارض",
		KindInvalidState:  "العملية غير مسموحة في الحالة الحالية",
		KindAuthorization: "ليس لديك صلاحية",
		KindInternal:      "خطأ داخلي",
	},
}

// KindTitle is the localised headline for an error kind.
func KindTitle(kind ErrorKind, lang string) string {
	titles, ok := kindTitles[lang]
	if !ok {
		titles = kindTitles[LangEnglish]
	}
	return titles[kind]
}
