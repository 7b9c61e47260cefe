package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsKind(t *testing.T) {
	err := fmt.Errorf("set parent: %w", InvalidOperation("category", 3, "cannot be its own parent"))
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("errors.Is(%v, ErrInvalidOperation) = false", err)
	}
	if errors.Is(err, ErrConflict) {
		t.Error("wrapped InvalidOperation must not match ErrConflict")
	}
	var e *Error
	if !errors.As(err, &e) || e.ID != 3 {
		t.Errorf("errors.As: got %+v", e)
	}
}

func TestError_Messages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NotFound("product", 9), "product 9: not found"},
		{Conflict("category", 1, "delete children first"), "category 1: delete children first"},
		{MissingAttribute("Size"), "missing attribute: Size"},
		{InvalidAttributeValue("Size", "%q is not an allowed value", "XL"), `invalid attribute value: Size: "XL" is not an allowed value`},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("Error() = %q, want %q", got, c.want)
		}
	}
}

func TestAttributeName(t *testing.T) {
	name, ok := AttributeName(fmt.Errorf("save: %w", MissingAttribute("Length")))
	if !ok || name != "Length" {
		t.Errorf("AttributeName = %q, %v", name, ok)
	}
	if _, ok := AttributeName(errors.New("plain")); ok {
		t.Error("AttributeName on plain error: want false")
	}
}
