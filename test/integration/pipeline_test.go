package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpgo/tax-engine/internal/calculation"
	"github.com/rpgo/tax-engine/internal/config"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleConfiguration_FileRoundTrip(t *testing.T) {
	parser := config.NewInputParser()
	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, output.SaveConfiguration(parser.CreateExampleConfiguration(), path))

	cfg, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, parser.ValidateConfiguration(cfg))
	assert.Empty(t, cfg.Warnings)
}

func TestPipeline_ClaimingAndMonteCarlo(t *testing.T) {
	parser := config.NewInputParser()
	cfg := parser.CreateExampleConfiguration()
	engine := calculation.NewEngine()
	c := cfg.Claiming

	analysis := engine.CalculateTaxEfficientClaimingStrategy(c.Taxpayer, c.Spouse, cfg.NonBenefitSources(), c.Optimization)
	require.NotEmpty(t, analysis.Strategies)
	for i := 1; i < len(analysis.Strategies); i++ {
		prev, cur := analysis.Strategies[i-1], analysis.Strategies[i]
		assert.True(t, prev.NetValue.GreaterThanOrEqual(cur.NetValue), "strategies out of order at %d", i)
	}
	assert.True(t, analysis.BestStrategy.NetValue.Sub(analysis.EarliestStrategy.NetValue).Equal(analysis.GainOverEarliest))

	mc := engine.RunMonteCarloAnalysis(context.Background(), c.Taxpayer, c.Spouse, cfg.NonBenefitSources(), c.Optimization, 5)
	assert.Equal(t, 5, mc.CompletedTrials)
	assert.Equal(t, analysis.BestStrategy.Label(), mc.BaseStrategy)
	assert.Equal(t, c.Optimization.Seed, mc.Seed)

	report := output.NewClaimingReport("", analysis)
	report.Assumptions = output.GenerateAssumptions(engine.Rules, &c.Optimization)
	for _, name := range output.AvailableFormatterNames() {
		t.Run(name, func(t *testing.T) {
			data, err := output.GetFormatterByName(name).Format(report)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}

	files, err := output.NewWriter(t.TempDir()).GenerateReport(output.NewMonteCarloReport("", mc), "all")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[1], ".csv"))
}
