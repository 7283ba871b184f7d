package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/tax-engine/internal/domain"
)

const rule = "================================================================================="

// ConsoleVerboseFormatter renders the detailed console report via the pluggable interface.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	if _, err := report.Payload(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer

	title := report.Title
	if title == "" {
		title = "TAX ANALYSIS"
	}
	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf, strings.ToUpper(title))
	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf)

	if len(report.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range report.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	switch report.Kind {
	case ReportScenario:
		writeScenario(&buf, report.Scenario)
	case ReportRateHike:
		if report.Scenario != nil {
			writeScenario(&buf, report.Scenario)
		}
		writeRateHike(&buf, report.RateHike)
	case ReportClaiming:
		writeClaiming(&buf, report.Claiming)
	case ReportMonteCarlo:
		writeMonteCarlo(&buf, report.MonteCarlo)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(&buf, "WARNINGS:")
		for _, w := range report.Warnings {
			fmt.Fprintf(&buf, "  ! %s\n", w)
		}
		fmt.Fprintln(&buf)
	}
	return buf.Bytes(), nil
}

func section(buf *bytes.Buffer, name string) {
	fmt.Fprintln(buf, name)
	fmt.Fprintln(buf, strings.Repeat("-", len(name)))
}

func writeScenario(buf *bytes.Buffer, s *domain.ScenarioResult) {
	section(buf, fmt.Sprintf("TAX YEAR %d (%s)", s.TaxYear, s.FilingStatus))
	if s.SpouseAge != nil {
		fmt.Fprintf(buf, "  Ages:                    %d / %d\n", s.TaxpayerAge, *s.SpouseAge)
	} else {
		fmt.Fprintf(buf, "  Age:                     %d\n", s.TaxpayerAge)
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "INCOME SOURCES:")
	for _, src := range s.Sources {
		label := src.Name
		if label == "" {
			label = src.ID
		}
		if label == "" {
			label = string(src.Kind)
		}
		fmt.Fprintf(buf, "  %-24s %14s  taxable %14s\n", label+":", FormatCurrency(src.Annual), FormatCurrency(src.Taxable))
	}
	fmt.Fprintf(buf, "  TOTAL INCOME:            %s\n", FormatCurrency(s.TotalIncome))
	fmt.Fprintf(buf, "  Tax-Free Income:         %s\n", FormatCurrency(s.TaxFreeIncome))
	fmt.Fprintf(buf, "  AGI:                     %s\n", FormatCurrency(s.AGI))
	fmt.Fprintf(buf, "  MAGI:                    %s\n", FormatCurrency(s.MAGI))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "SOCIAL SECURITY:")
	fmt.Fprintf(buf, "  Benefits:                %s\n", FormatCurrency(s.SocialSecurity.Benefits))
	fmt.Fprintf(buf, "  Provisional Income:      %s\n", FormatCurrency(s.SocialSecurity.ProvisionalIncome))
	fmt.Fprintf(buf, "  Taxable (Tier %s):       %s\n", s.SocialSecurity.Tier, FormatCurrency(s.SocialSecurity.Taxable))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "DEDUCTIONS & TAXES:")
	fmt.Fprintf(buf, "  Deduction (%s):%s%s\n", s.Deduction.Type, strings.Repeat(" ", max(1, 13-len(s.Deduction.Type))), FormatCurrency(s.Deduction.Amount))
	fmt.Fprintf(buf, "  Taxable Income:          %s\n", FormatCurrency(s.TaxableIncome))
	fmt.Fprintf(buf, "  Ordinary Tax:            %s\n", FormatCurrency(s.OrdinaryTax))
	fmt.Fprintf(buf, "  Capital Gains Tax:       %s\n", FormatCurrency(s.CapitalGains.Tax))
	fmt.Fprintf(buf, "  NIIT:                    %s\n", FormatCurrency(s.NIIT))
	fmt.Fprintf(buf, "  Early Withdrawal:        %s\n", FormatCurrency(s.EarlyWithdrawalPenalty))
	fmt.Fprintf(buf, "  Federal Tax:             %s\n", FormatCurrency(s.FederalTax))
	fmt.Fprintf(buf, "  State Tax (%s):%s%s\n", s.State.Name, strings.Repeat(" ", max(1, 13-len(s.State.Name))), FormatCurrency(s.State.NetTax))
	if s.Payroll.Enabled {
		fmt.Fprintf(buf, "  Payroll Tax:             %s\n", FormatCurrency(s.Payroll.Total))
	}
	fmt.Fprintf(buf, "  TOTAL TAX:               %s\n", FormatCurrency(s.TotalTax))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "RATES:")
	fmt.Fprintf(buf, "  Effective Rate:          %s\n", FormatRate(s.EffectiveRate))
	fmt.Fprintf(buf, "  Marginal Rate:           %s\n", FormatRate(s.MarginalRate))
	if s.NextBracket != nil {
		fmt.Fprintf(buf, "  Next Bracket:            %s in %s more taxable income\n", FormatRate(s.NextBracket.Rate), FormatCurrency(s.AmountToNextBracket))
	}
	if s.IRMAA.AnnualSurcharge.IsPositive() {
		fmt.Fprintf(buf, "  IRMAA Surcharge:         %s (tier %d)\n", FormatCurrency(s.IRMAA.AnnualSurcharge), s.IRMAA.TierIndex)
	}
	fmt.Fprintln(buf)
}

func writeRateHike(buf *bytes.Buffer, h *domain.RateHikeResult) {
	section(buf, "NEXT RATE INCREASE")
	fmt.Fprintf(buf, "  Baseline Income:         %s\n", FormatCurrency(h.BaselineIncome))
	fmt.Fprintf(buf, "  Current Rate:            %s\n", FormatRate(h.CurrentRate))
	if !h.NextRate.GreaterThan(h.CurrentRate) {
		fmt.Fprintf(buf, "  No increase ahead:       %s\n", h.Cause)
	} else {
		fmt.Fprintf(buf, "  Next Rate:               %s\n", FormatRate(h.NextRate))
		fmt.Fprintf(buf, "  Additional Income:       %s\n", FormatCurrency(h.AmountToNextHike))
		fmt.Fprintf(buf, "  Cause:                   %s\n", strings.Join(h.Causes, ", "))
	}
	fmt.Fprintf(buf, "  Method:                  %s (%d evaluations)\n", h.Method, h.Evaluations)
	fmt.Fprintln(buf)
}

func writeClaiming(buf *bytes.Buffer, c *domain.ClaimingAnalysis) {
	section(buf, "CLAIMING STRATEGIES (ranked)")
	fmt.Fprintf(buf, "  %-8s %16s %16s %14s %10s\n", "Ages", "Net Value", "After-Tax", "IRMAA", "Over Target")
	for _, s := range c.Strategies {
		fmt.Fprintf(buf, "  %-8s %16s %16s %14s %10d\n",
			s.Label(), FormatCurrency(s.NetValue), FormatCurrency(s.LifetimeAfterTax), FormatCurrency(s.IRMAAImpact), s.BracketViolations)
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "SUMMARY & RECOMMENDATIONS")
	fmt.Fprintln(buf, "=========================")
	fmt.Fprintf(buf, "Best strategy:     %s\n", c.BestStrategy.Label())
	fmt.Fprintf(buf, "Earliest strategy: %s\n", c.EarliestStrategy.Label())
	fmt.Fprintf(buf, "Gain over earliest: %s\n", FormatCurrency(c.GainOverEarliest))
	if c.BreakevenAge > 0 {
		fmt.Fprintf(buf, "Breakeven age:     %d\n", c.BreakevenAge)
	}
	for _, rec := range c.Recommendations {
		fmt.Fprintf(buf, "• %s\n", rec)
	}
	fmt.Fprintln(buf)
}

func writeMonteCarlo(buf *bytes.Buffer, m *domain.MonteCarloAnalysis) {
	section(buf, "MONTE CARLO CLAIMING ANALYSIS")
	fmt.Fprintf(buf, "  Trials:                  %d of %d (seed %d)\n", m.CompletedTrials, m.RequestedTrials, m.Seed)
	if m.TimedOut {
		fmt.Fprintln(buf, "  Stopped early; results cover the completed trials only")
	}
	fmt.Fprintf(buf, "  Base Strategy:           %s\n", m.BaseStrategy)
	fmt.Fprintf(buf, "  Base Agreement:          %s\n", FormatRate(m.Risk.BaseStrategyAgreement))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "NET VALUE PERCENTILES:")
	for _, p := range []struct {
		name  string
		value string
	}{
		{"10th", FormatCurrency(m.ValuePercentiles.P10)},
		{"25th", FormatCurrency(m.ValuePercentiles.P25)},
		{"50th", FormatCurrency(m.ValuePercentiles.P50)},
		{"75th", FormatCurrency(m.ValuePercentiles.P75)},
		{"90th", FormatCurrency(m.ValuePercentiles.P90)},
	} {
		fmt.Fprintf(buf, "  %-5s %s\n", p.name, p.value)
	}
	fmt.Fprintf(buf, "  Mean %s, std dev %s, CV %s\n",
		FormatCurrency(m.Risk.Mean), FormatCurrency(m.Risk.StandardDeviation), m.Risk.CoefficientOfVariation.StringFixed(4))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "WINNING STRATEGIES:")
	for _, f := range m.Frequencies {
		fmt.Fprintf(buf, "  %-8s %5d  %s\n", f.Strategy, f.Count, FormatPercentage(f.Percent))
	}
	fmt.Fprintln(buf)
}
