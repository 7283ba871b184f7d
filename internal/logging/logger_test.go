package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ calculation.Logger = SlogAdapter{}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn", "json")

	l.Info("dropped")
	l.Warn("kept", "trials", 20)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.EqualValues(t, 20, entry["trials"])
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(NewLogger(&buf, "debug", "text"))

	adapter.Debugf("evaluated %d strategies", 9)
	adapter.Warnf("monte carlo: %d trials requested, capped at %d", 5000, 2000)

	out := buf.String()
	assert.Contains(t, out, `msg="evaluated 9 strategies"`)
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "component=engine")
}

func TestNewSlogAdapter_NilUsesDefault(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	assert.NotNil(t, adapter.L)
}

func TestEngineLogsThroughAdapter(t *testing.T) {
	var buf bytes.Buffer
	e := calculation.NewEngine()
	e.SetLogger(NewSlogAdapter(NewLogger(&buf, "info", "text")))

	taxpayer := domain.PersonInfo{Age: 66, PrimaryInsuranceAmount: decimal.NewFromInt(1800), LifeExpectancy: 70}
	e.CalculateTaxEfficientClaimingStrategy(taxpayer, nil, nil, domain.OptimizationSettings{Workers: 1})
	assert.Contains(t, buf.String(), "claiming: best=")
}

func TestInitLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := InitLogger(&buf, "info", "json")
	require.Same(t, l, Logger)

	slog.Info("ready", "workers", 4)
	assert.Contains(t, buf.String(), `"msg":"ready"`)
}
