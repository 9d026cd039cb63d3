package serrors_test

import (
	"errors"
	"fmt"
	"testing"

	"go-marketplace/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func TestDefaultKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrNotFound,
		serrors.ErrUnauthorized,
		serrors.ErrForbidden,
		serrors.ErrBadRequest,
		serrors.ErrConflict,
		serrors.ErrInternal,
		serrors.ErrUnavailable,
		serrors.ErrRateLimited,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("db down")

	e1 := serrors.With(serrors.ErrNotFound, "listing %s not found", "abc")
	require.Equal(t, "listing abc not found", e1.Error())

	e2 := serrors.Wrap(serrors.ErrInternal, base, "loading listing")
	require.Equal(t, "loading listing: db down", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrConflict)
	require.Equal(t, "CONFLICT", e3.Error())
}

func TestIsMatchesKindAndCause(t *testing.T) {
	base := errors.New("unique violation")
	err := fmt.Errorf("saving: %w", serrors.Wrap(serrors.ErrConflict, base, "duplicate"))

	require.ErrorIs(t, err, serrors.ErrConflict)
	require.ErrorIs(t, err, base)
	require.NotErrorIs(t, err, serrors.ErrNotFound)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want serrors.Kind
	}{
		{name: "nil", err: nil, want: nil},
		{name: "plain error", err: errors.New("boom"), want: nil},
		{name: "direct", err: serrors.KindOnly(serrors.ErrNotFound), want: serrors.ErrNotFound},
		{
			name: "wrapped by fmt",
			err:  fmt.Errorf("outer: %w", serrors.With(serrors.ErrBadRequest, "bad")),
			want: serrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, serrors.KindOf(tt.err))
		})
	}
}
