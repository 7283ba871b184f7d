package integration

import (
	"path/filepath"
	"testing"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/config"
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, name string) (*domain.Configuration, *calculation.Engine) {
	t.Helper()
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	rules, err := parser.ResolveRules(cfg)
	require.NoError(t, err)
	return cfg, calculation.NewEngineWithRules(rules)
}

func calculate(e *calculation.Engine, cfg *domain.Configuration) domain.ScenarioResult {
	h := cfg.Household
	return e.CalculateComprehensiveTaxes(cfg.Sources(), h.TaxpayerAge, h.SpouseAge, h.FilingStatus, cfg.CalcOptions())
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", field, want, got)
}
