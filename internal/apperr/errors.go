// Package apperr classifica falhas de regra de negócio para a camada HTTP.
package apperr

import "errors"

// Kind identifica a categoria do erro.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
)

var (
	// ErrValidation casa com qualquer erro de validação via errors.Is.
	ErrValidation = errors.New("dados inválidos")
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
	// ErrConflict indica registro duplicado.
	ErrConflict = errors.New("registro já existe")
)

// Error carrega a mensagem exibida ao usuário.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is permite errors.Is(err, apperr.ErrNotFound) e afins.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

func Validation(message string) error { return &Error{Kind: KindValidation, Message: message} }
func NotFound(message string) error   { return &Error{Kind: KindNotFound, Message: message} }
func Forbidden(message string) error  { return &Error{Kind: KindForbidden, Message: message} }
func Conflict(message string) error   { return &Error{Kind: KindConflict, Message: message} }

// KindOf devolve a categoria do erro ou 0 quando não classificado.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
