package util

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout é o formato de exibição usado na planilha.
const DateLayout = "02/01/2006"

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

var (
	// Now permite substituir o relógio em testes.
	Now = time.Now
	// Location define o fuso usado para datas da planilha.
	Location = time.Local
)

// FormatDate devolve a data em DD/MM/YYYY no fuso configurado.
func FormatDate(t time.Time) string {
	return t.In(Location).Format(DateLayout)
}

// Today formata a data corrente.
func Today() string {
	return FormatDate(Now())
}

// CurrentYear devolve o ano corrente no fuso configurado.
func CurrentYear() int {
	return Now().In(Location).Year()
}

// IsDate indica se o texto segue exatamente o padrão DD/MM/YYYY.
func IsDate(value string) bool {
	return datePattern.MatchString(strings.TrimSpace(value))
}

// ParseDate interpreta DD/MM/YYYY como meia-noite local.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), Location)
}

// IsStale indica se a data de registro está mais de threshold antes de now.
// Datas ilegíveis nunca são consideradas atrasadas.
func IsStale(registeredAt string, now time.Time, threshold time.Duration) bool {
	if !IsDate(registeredAt) {
		return false
	}
	t, err := ParseDate(registeredAt)
	if err != nil {
		return false
	}
	return now.Sub(t) > threshold
}
