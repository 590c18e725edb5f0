package entity

import "strings"

// Language represents supported language codes using ISO-style abbreviations.
type Language string

const (
	LanguageUnspecified Language = ""
	LanguageEnglish     Language = "en"
	LanguageGerman      Language = "de"
	LanguageFrench      Language = "fr"
	LanguageSpanish     Language = "es"
)

// DefaultLanguage is the catalog's fallback language. Localized strings
// resolve to this language when the requested one has no value.
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists the languages a localized string may carry,
// in the order matchers scan them.
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageGerman,
	LanguageFrench,
	LanguageSpanish,
}

// Code returns the lowercase language code (without defaulting).
func (l Language) Code() string {
	return strings.TrimSpace(string(l))
}

// CodeOrDefault returns the language code, falling back to English when unspecified.
func (l Language) CodeOrDefault() string {
	if l.Code() == "" {
		return string(DefaultLanguage)
	}
	return l.Code()
}

// NormalizeLanguage ensures the language falls back to a supported value (defaults to English).
func NormalizeLanguage(lang Language) Language {
	switch lang {
	case LanguageEnglish, LanguageGerman, LanguageFrench, LanguageSpanish:
		return lang
	default:
		return DefaultLanguage
	}
}

// ParseLanguage converts an arbitrary string into a supported Language value.
func ParseLanguage(code string) Language {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en":
		return LanguageEnglish
	case "de":
		return LanguageGerman
	case "fr":
		return LanguageFrench
	case "es":
		return LanguageSpanish
	default:
		return LanguageUnspecified
	}
}
