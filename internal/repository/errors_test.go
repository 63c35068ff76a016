package repository

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMapPgError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, expected: ErrAlreadyExists},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, expected: ErrNotFound},
		{name: "check violation", err: &pgconn.PgError{Code: "23514", ConstraintName: "posts_volunteers_needed_range"}, expected: ErrInvalid},
		{name: "wrapped unique violation", err: errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert"), expected: ErrAlreadyExists},
		{name: "other error unchanged", err: plain, expected: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapPgError(tt.err), tt.expected)
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "beach", expected: "%beach%"},
		{in: "100%", expected: `%100\%%`},
		{in: "snake_case", expected: `%snake\_case%`},
		{in: `back\slash`, expected: `%back\\slash%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, likePattern(tt.in))
		})
	}
}
