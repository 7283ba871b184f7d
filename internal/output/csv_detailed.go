package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/tax-engine/internal/domain"
)

// CSVDetailedExporter provides the row-level detail behind a report: the per-source
// breakdown of a calculation, the projected years of every claiming strategy, or the
// winning-strategy counts of a Monte Carlo run.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *Report) ([]byte, error) {
	if _, err := report.Payload(); err != nil {
		return nil, err
	}
	var rows [][]string
	switch report.Kind {
	case ReportScenario:
		rows = sourceRows(report.Scenario.Sources)
	case ReportRateHike:
		rows = [][]string{{"Cause", "CurrentRate", "NextRate", "AmountToNextHike"}}
		for _, cause := range report.RateHike.Causes {
			rows = append(rows, []string{
				cause,
				rate(report.RateHike.CurrentRate),
				rate(report.RateHike.NextRate),
				money(report.RateHike.AmountToNextHike),
			})
		}
	case ReportClaiming:
		rows = [][]string{{"Strategy", "Year", "TaxpayerAge", "SpouseAge", "FilingStatus", "Benefits", "TaxableBenefits", "IncrementalTax", "AfterTaxBenefits", "PresentValue", "IRMAASurcharge", "MarginalRate"}}
		for _, s := range report.Claiming.Strategies {
			for _, y := range s.Years {
				rows = append(rows, []string{
					s.Label(),
					intToString(y.Year),
					intToString(y.TaxpayerAge),
					intToString(y.SpouseAge),
					string(y.FilingStatus),
					money(y.Benefits),
					money(y.TaxableBenefits),
					money(y.IncrementalTax),
					money(y.AfterTaxBenefits),
					money(y.PresentValue),
					money(y.IRMAASurcharge),
					rate(y.MarginalRate),
				})
			}
		}
	case ReportMonteCarlo:
		rows = [][]string{{"Strategy", "Count", "Percent", "IsBase"}}
		for _, f := range report.MonteCarlo.Frequencies {
			rows = append(rows, []string{
				f.Strategy,
				intToString(f.Count),
				f.Percent.StringFixed(2),
				boolToString(f.Strategy == report.MonteCarlo.BaseStrategy),
			})
		}
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sourceRows(sources []domain.SourceBreakdown) [][]string {
	rows := [][]string{{"ID", "Name", "Kind", "Owner", "Annual", "Taxable", "TaxFree", "Penalty"}}
	for _, s := range sources {
		rows = append(rows, []string{
			s.ID,
			s.Name,
			string(s.Kind),
			string(s.Owner),
			money(s.Annual),
			money(s.Taxable),
			money(s.TaxFree),
			money(s.Penalty),
		})
	}
	return rows
}
