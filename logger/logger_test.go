package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("account_id", "acct").Msg("balance changed")

	assert.Contains(t, buf.String(), "balance changed")
	assert.Contains(t, buf.String(), `"account_id":"acct"`)
}

func TestConfigure_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, Configure("json", tt.level).GetLevel())
		})
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	l := FromContext(ctx)
	l.Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestFromContextOr(t *testing.T) {
	fallback := &bytes.Buffer{}
	scoped := &bytes.Buffer{}

	l := FromContextOr(context.Background(), NewWithWriter(fallback))
	l.Info().Msg("fallback line")

	ctx := WithContext(context.Background(), NewWithWriter(scoped))
	l = FromContextOr(ctx, NewWithWriter(fallback))
	l.Info().Msg("scoped line")

	assert.Contains(t, fallback.String(), "fallback line")
	assert.NotContains(t, fallback.String(), "scoped line")
	assert.Contains(t, scoped.String(), "scoped line")
	assert.NotContains(t, scoped.String(), "fallback line")
}
