package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/p.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("CHECK_WORKERS", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/p.db", cfg.Database.SQLitePath)
	assert.Equal(t, "ak", cfg.AI.APIKey)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		AI:       AIConfig{Provider: "gemini"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	for _, want := range []string{"DB_URL", "JWT_SECRET", "HTTP_ADDR", "AI_PROVIDER"} {
		assert.Contains(t, err.Error(), want)
	}

	assert.Error(t, DatabaseConfig{Driver: "mysql"}.Validate())
	assert.NoError(t, DatabaseConfig{Driver: "postgres", DSN: "postgres://x"}.Validate())
}

func TestAppErrors(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"not found", NotFoundError("document not found"), ErrNotFound, "document not found"},
		{"forbidden", ForbiddenError("not yours"), ErrForbidden, "not yours"},
		{"precondition", PreconditionError("text not available"), ErrPrecondition, "text not available"},
		{"persistence", PersistenceError("save", cause), ErrPersistence, "save"},
		{"extraction", ExtractionError("ocr", cause), ErrExtraction, "ocr"},
		{"invalid", InvalidArgumentErrorf("bad %s", "id"), ErrInvalidInput, "bad id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.message, PublicMessage(tt.err, "fallback"))
		})
	}
	assert.ErrorIs(t, PersistenceError("save", cause), cause)
	assert.Equal(t, "fallback", PublicMessage(cause, "fallback"))
	assert.Nil(t, WrapError(nil, "ctx"))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("userId", "", Required).
		Field("file", int64(0), MaxBytes(10)).
		Field("size", int64(11), MaxBytes(10)).
		Field("status", "done", OneOf("pending", "approved")).
		Field("comments", strPtr("abcdef"), MaxLength(5)).
		Field("note", (*string)(nil), Required, MaxLength(5))
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 6)

	err := ValidateAndReturnError(v)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, PublicMessage(err, ""), "userId is required")

	assert.NoError(t, ValidateAndReturnError(NewValidator().Field("size", int64(10), MaxBytes(10))))
}

func TestContextValues(t *testing.T) {
	ctx := WithRoles(WithUserID(WithRequestID(context.Background(), "r1"), "alice"), []string{"admin"})
	assert.Equal(t, "r1", RequestIDFromContext(ctx))
	assert.Equal(t, "alice", UserIDFromContext(ctx))
	assert.True(t, HasRole(ctx, "admin"))
	assert.False(t, HasRole(context.Background(), "admin"))
}

func strPtr(s string) *string { return &s }
