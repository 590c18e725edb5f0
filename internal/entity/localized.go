package entity

import "strings"

// LocalizedString holds one value per language code. Author names, work
// titles and list names are all localized strings. Legacy plain-text values
// are migrated into this shape once at the persistence boundary; readers
// never have to guess the stored representation.
type LocalizedString map[Language]string

// NewLocalizedString builds a localized string carrying value for lang and,
// when lang is not the default language, the same value as the default
// fallback.
func NewLocalizedString(lang Language, value string) LocalizedString {
	ls := LocalizedString{}
	lang = NormalizeLanguage(lang)
	ls[lang] = value
	if lang != DefaultLanguage {
		ls[DefaultLanguage] = value
	}
	return ls
}

// Get returns the raw value stored for lang, without fallback.
func (ls LocalizedString) Get(lang Language) string {
	if ls == nil {
		return ""
	}
	return ls[lang]
}

// Set stores value for lang, replacing any previous value.
func (ls LocalizedString) Set(lang Language, value string) {
	ls[NormalizeLanguage(lang)] = value
}

// Resolve returns the value for lang, falling back to the default language
// when lang has no value, and to the empty string when neither is set.
func (ls LocalizedString) Resolve(lang Language) string {
	if ls == nil {
		return ""
	}
	if v := ls[NormalizeLanguage(lang)]; v != "" {
		return v
	}
	return ls[DefaultLanguage]
}

// IsBlank reports whether no language carries a non-empty value.
func (ls LocalizedString) IsBlank() bool {
	for _, v := range ls {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (ls LocalizedString) Clone() LocalizedString {
	if ls == nil {
		return nil
	}
	out := make(LocalizedString, len(ls))
	for k, v := range ls {
		out[k] = v
	}
	return out
}
