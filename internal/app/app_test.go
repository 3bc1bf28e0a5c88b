package app

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

func TestNewReviewer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tests := []struct {
		name     string
		cfg      common.AIConfig
		wantName string
	}{
		{name: "openai", cfg: common.AIConfig{Provider: "openai", APIKey: "k"}, wantName: "openai"},
		{name: "anthropic", cfg: common.AIConfig{Provider: "anthropic", APIKey: "k"}, wantName: "anthropic"},
		{name: "none", cfg: common.AIConfig{Provider: "none", APIKey: "k"}},
		{name: "no key", cfg: common.AIConfig{Provider: "openai"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReviewer(tt.cfg, logger)
			if tt.wantName == "" {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}

func TestNewAIChecker_DisabledIsNilInterface(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	c := NewAIChecker(common.AIConfig{Provider: "none"}, standards.Default(), logger)
	assert.Nil(t, c)

	c = NewAIChecker(common.AIConfig{Provider: "openai", APIKey: "k"}, standards.Default(), logger)
	assert.NotNil(t, c)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo, true).Info("permit.started", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"permit.started"`)

	buf.Reset()
	NewLogger(&buf, slog.LevelWarn, false).Info("hidden")
	assert.Empty(t, buf.String())
}
