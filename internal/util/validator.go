package util

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// ValidateExtension aceita ramais compostos apenas por dígitos.
func ValidateExtension(ramal string) error {
	ramal = strings.TrimSpace(ramal)
	if ramal == "" {
		return errors.New("ramal obrigatório")
	}
	for _, r := range ramal {
		if !unicode.IsDigit(r) {
			return errors.New("ramal deve conter apenas dígitos")
		}
	}
	return nil
}
