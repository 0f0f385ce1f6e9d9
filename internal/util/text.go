package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText remove espaços nas extremidades; vazio continua vazio.
func NormalizeText(value string) string {
	return strings.TrimSpace(value)
}

// EqualsIgnoreCase compara textos normalizados sem diferenciar maiúsculas.
func EqualsIgnoreCase(a, b string) bool {
	return strings.EqualFold(NormalizeText(a), NormalizeText(b))
}

// StripAccents remove marcas diacríticas ("Descrição" -> "Descricao").
func StripAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}
