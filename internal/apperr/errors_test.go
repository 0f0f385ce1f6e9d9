package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("demanda: %w", NotFound("demanda não encontrada"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound match")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("did not expect ErrValidation match")
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", KindOf(err))
	}
	if KindOf(errors.New("x")) != 0 {
		t.Fatalf("plain errors must not be classified")
	}
	if err.Error() != "demanda: demanda não encontrada" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
