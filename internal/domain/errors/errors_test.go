package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsUnwrapToKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"conflict", ConflictError{Op: "user.Register", Field: "email"}, ErrConflict},
		{"not found", NotFoundError{Op: "user.FetchByEmail", Resource: "user"}, ErrNotFound},
		{"op error", OpError{Op: "token.Validate", Kind: ErrInvalidToken}, ErrInvalidToken},
		{"wrapped", fmt.Errorf("outer: %w", OpError{Op: "x", Kind: ErrForbidden}), ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Fatalf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrConflict, ErrNotFound, ErrUnauthorized, ErrInvalidToken, ErrForbidden, ErrInvalidInput}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v should not match %v", a, b)
			}
		}
	}
}

func TestPredicates(t *testing.T) {
	if !IsConflict(ConflictError{Op: "op"}) {
		t.Error("IsConflict")
	}
	if !IsNotFound(NotFoundError{Op: "op"}) {
		t.Error("IsNotFound")
	}
	if IsUnauthorized(ErrInvalidToken) {
		t.Error("invalid token must not read as unauthorized")
	}
	if !IsInvalidToken(OpError{Op: "op", Kind: ErrInvalidToken, Msg: "malformed"}) {
		t.Error("IsInvalidToken")
	}
	if !IsForbidden(ErrForbidden) {
		t.Error("IsForbidden")
	}
}

func TestErrorMessages(t *testing.T) {
	got := ConflictError{Op: "user.Register", Field: "email"}.Error()
	if got != "user.Register: conflict: email already registered" {
		t.Fatalf("unexpected message %q", got)
	}
	got = OpError{Op: "token.Validate", Kind: ErrInvalidToken}.Error()
	if got != "token.Validate: invalid token" {
		t.Fatalf("unexpected message %q", got)
	}
}
