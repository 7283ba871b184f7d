package output

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// KeyFigure is one headline number of a report
type KeyFigure struct {
	Name  string
	Value string
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
func rate(d decimal.Decimal) string  { return d.StringFixed(4) }

// KeyFigures extracts the headline numbers of a report in a stable order.
// Extracted from the formatters so the CSV summary and console views agree.
func KeyFigures(r *Report) ([]KeyFigure, error) {
	if _, err := r.Payload(); err != nil {
		return nil, err
	}
	switch r.Kind {
	case ReportScenario:
		s := r.Scenario
		return []KeyFigure{
			{"TaxYear", intToString(s.TaxYear)},
			{"FilingStatus", string(s.FilingStatus)},
			{"TotalIncome", money(s.TotalIncome)},
			{"AGI", money(s.AGI)},
			{"MAGI", money(s.MAGI)},
			{"DeductionType", s.Deduction.Type},
			{"Deduction", money(s.Deduction.Amount)},
			{"TaxableIncome", money(s.TaxableIncome)},
			{"TaxableSocialSecurity", money(s.SocialSecurity.Taxable)},
			{"FederalTax", money(s.FederalTax)},
			{"StateTax", money(s.State.NetTax)},
			{"PayrollTax", money(s.Payroll.Total)},
			{"TotalTax", money(s.TotalTax)},
			{"IRMAASurcharge", money(s.IRMAA.AnnualSurcharge)},
			{"EffectiveRate", rate(s.EffectiveRate)},
			{"MarginalRate", rate(s.MarginalRate)},
			{"AmountToNextBracket", money(s.AmountToNextBracket)},
		}, nil
	case ReportRateHike:
		h := r.RateHike
		return []KeyFigure{
			{"BaselineIncome", money(h.BaselineIncome)},
			{"CurrentRate", rate(h.CurrentRate)},
			{"NextRate", rate(h.NextRate)},
			{"AmountToNextHike", money(h.AmountToNextHike)},
			{"Cause", h.Cause},
			{"Method", h.Method},
			{"Evaluations", intToString(h.Evaluations)},
		}, nil
	case ReportClaiming:
		c := r.Claiming
		return []KeyFigure{
			{"BestStrategy", c.BestStrategy.Label()},
			{"BestNetValue", money(c.BestStrategy.NetValue)},
			{"BestIRMAAImpact", money(c.BestStrategy.IRMAAImpact)},
			{"EarliestStrategy", c.EarliestStrategy.Label()},
			{"EarliestNetValue", money(c.EarliestStrategy.NetValue)},
			{"GainOverEarliest", money(c.GainOverEarliest)},
			{"BreakevenAge", intToString(c.BreakevenAge)},
			{"Strategies", intToString(len(c.Strategies))},
			{"Evaluations", intToString(c.Evaluations)},
		}, nil
	default:
		m := r.MonteCarlo
		top := ""
		if len(m.Frequencies) > 0 {
			top = m.Frequencies[0].Strategy
		}
		return []KeyFigure{
			{"RequestedTrials", intToString(m.RequestedTrials)},
			{"CompletedTrials", intToString(m.CompletedTrials)},
			{"Seed", fmt.Sprint(m.Seed)},
			{"BaseStrategy", m.BaseStrategy},
			{"MostFrequentStrategy", top},
			{"P10", money(m.ValuePercentiles.P10)},
			{"P50", money(m.ValuePercentiles.P50)},
			{"P90", money(m.ValuePercentiles.P90)},
			{"Mean", money(m.Risk.Mean)},
			{"StandardDeviation", money(m.Risk.StandardDeviation)},
			{"BaseStrategyAgreement", rate(m.Risk.BaseStrategyAgreement)},
			{"TimedOut", boolToString(m.TimedOut)},
		}, nil
	}
}

// Headline is a one-line summary used by the concise console report
func Headline(r *Report) string {
	if _, err := r.Payload(); err != nil {
		return ""
	}
	switch r.Kind {
	case ReportScenario:
		s := r.Scenario
		return fmt.Sprintf("Total tax %s on %s of income (effective %s, marginal %s)",
			FormatCurrency(s.TotalTax), FormatCurrency(s.TotalIncome), FormatRate(s.EffectiveRate), FormatRate(s.MarginalRate))
	case ReportRateHike:
		h := r.RateHike
		if !h.NextRate.GreaterThan(h.CurrentRate) {
			return fmt.Sprintf("No rate increase ahead (%s); marginal rate stays at %s", h.Cause, FormatRate(h.CurrentRate))
		}
		return fmt.Sprintf("Marginal rate rises from %s to %s after %s more income (%s)",
			FormatRate(h.CurrentRate), FormatRate(h.NextRate), FormatCurrency(h.AmountToNextHike), h.Cause)
	case ReportClaiming:
		c := r.Claiming
		return fmt.Sprintf("Recommended: claim at %s (net value %s, %s over %s)",
			c.BestStrategy.Label(), FormatCurrency(c.BestStrategy.NetValue), FormatCurrency(c.GainOverEarliest), c.EarliestStrategy.Label())
	default:
		m := r.MonteCarlo
		return fmt.Sprintf("Base strategy %s held in %s of %d trials (median net value %s)",
			m.BaseStrategy, FormatRate(m.Risk.BaseStrategyAgreement), m.CompletedTrials, FormatCurrency(m.ValuePercentiles.P50))
	}
}
