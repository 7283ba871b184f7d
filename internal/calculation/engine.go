package calculation

import (
	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine is the entry point for tax, rate-hike and claiming calculations. It holds
// no state besides its read-only rules and its logging and metrics hooks.
type Engine struct {
	TaxCalc  *ComprehensiveTaxCalculator
	Rules    domain.TaxRules
	Workers  int // Searches fan out to this many goroutines; zero means one per CPU
	Logger   Logger
	Observer Observer
}

// NewEngine creates an engine with the built-in rules
func NewEngine() *Engine {
	return NewEngineWithRules(DefaultTaxRules())
}

// NewEngineWithRules creates an engine with configurable rules
func NewEngineWithRules(rules domain.TaxRules) *Engine {
	rules = rules.Normalized()
	return &Engine{
		TaxCalc:  NewComprehensiveTaxCalculatorWithConfig(rules),
		Rules:    rules,
		Logger:   NopLogger{},
		Observer: NopObserver{},
	}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// SetObserver sets the metrics observer. If nil is provided, a no-op observer is used.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		e.Observer = NopObserver{}
		return
	}
	e.Observer = o
}

func (e *Engine) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

func (e *Engine) observer() Observer {
	if e.Observer == nil {
		return NopObserver{}
	}
	return e.Observer
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return defaultWorkers()
}

// CalculateComprehensiveTaxes computes the full tax picture for one household and tax year
func (e *Engine) CalculateComprehensiveTaxes(sources []domain.IncomeSource, taxpayerAge int, spouseAge *int, status domain.FilingStatus, opts domain.CalcOptions) domain.ScenarioResult {
	result := e.evaluate(OpScenario, sources, taxpayerAge, spouseAge, status, opts)
	for _, w := range result.Warnings {
		e.logger().Warnf("scenario: %s", w)
	}
	e.logger().Debugf("scenario: agi=%s taxable=%s total_tax=%s marginal=%s",
		result.AGI.StringFixed(2), result.TaxableIncome.StringFixed(2), result.TotalTax.StringFixed(2), result.MarginalRate.String())
	return result
}

// evaluate runs the orchestrator and reports the run to the observer
func (e *Engine) evaluate(op string, sources []domain.IncomeSource, taxpayerAge int, spouseAge *int, status domain.FilingStatus, opts domain.CalcOptions) domain.ScenarioResult {
	e.observer().ObserveEvaluation(op)
	return e.TaxCalc.CalculateComprehensiveTaxes(sources, taxpayerAge, spouseAge, status, opts)
}

// TaxBrackets returns a fresh copy of the ordinary schedule for a status and settings
func (e *Engine) TaxBrackets(status domain.FilingStatus, settings *domain.Settings) []domain.Bracket {
	return e.TaxCalc.FederalTaxCalc.BracketsFor(status.Normalize(), settings.Year(), settings.Sunset())
}

// StandardDeduction returns the standard deduction breakdown. The senior phase-out uses
// the MAGI override from settings; without one no phase-out applies.
func (e *Engine) StandardDeduction(status domain.FilingStatus, taxpayerAge int, spouseAge *int, settings *domain.Settings) domain.DeductionBreakdown {
	demo, _ := domain.Demographics{
		TaxpayerAge:  taxpayerAge,
		SpouseAge:    spouseAge,
		FilingStatus: status,
	}.Normalized()

	magi := decimal.Zero
	if settings != nil && settings.MAGIOverride != nil {
		magi = *settings.MAGIOverride
	}
	return e.TaxCalc.DeductionCalc.CalculateStandardDeduction(demo, magi, settings.Year(), settings.Sunset())
}
