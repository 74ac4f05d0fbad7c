package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_UnwrapsInternal(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStorageError(cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, ErrorTypeStorage, err.Type)
	assert.NotEmpty(t, err.Source)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", stderrors.New("boom"), DefaultUserMessage},
		{"app error without message", NewInternalError(stderrors.New("x")), DefaultUserMessage},
		{"app error with message", NewStorageError(stderrors.New("x")).WithUserMessage("Ошибка истории"), "Ошибка истории"},
		{"wrapped app error", fmt.Errorf("ctx: %w", NewValidationError("bad").WithUserMessage("Неверно")), "Неверно"},
		{"app error inside app error", Wrap(NewStorageError(stderrors.New("x")).WithUserMessage("Ошибка экспорта"), ErrorTypeStorage, "UPDATE", "outer"), "Ошибка экспорта"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewNotFoundError("reading"))

	assert.True(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(err, ErrorTypeStorage))
	assert.False(t, IsType(stderrors.New("x"), ErrorTypeNotFound))
}

func TestHandler_LogsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	h.Handle(context.Background(), NewValidationError("bad triple"))
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	h.Handle(context.Background(), NewStorageError(stderrors.New("locked")).WithContext("user_id", int64(5)))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "user_id=5")

	buf.Reset()
	h.Handle(context.Background(), nil)
	assert.Empty(t, buf.String())
}
