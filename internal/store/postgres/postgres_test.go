package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/quizdeck/backend/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, store.ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503"}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapErr("op", tt.err), tt.want)
		})
	}

	other := errors.New("connection reset")
	err := mapErr("insert answer", other)
	assert.ErrorIs(t, err, other)
	assert.Equal(t, "insert answer: connection reset", err.Error())
	assert.NoError(t, mapErr("op", nil))
}

func TestNullUUID(t *testing.T) {
	assert.False(t, nullUUID(uuid.Nil).Valid)
	id := uuid.New()
	assert.Equal(t, uuid.NullUUID{UUID: id, Valid: true}, nullUUID(id))
}
