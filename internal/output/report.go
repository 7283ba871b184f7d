package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rpgo/tax-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// ReportKind names the engine operation a report was produced from
type ReportKind string

const (
	ReportScenario   ReportKind = "scenario"
	ReportRateHike   ReportKind = "rate_hike"
	ReportClaiming   ReportKind = "claiming"
	ReportMonteCarlo ReportKind = "monte_carlo"
)

// Report is the formatter input: one engine result plus the context it was computed under
type Report struct {
	Kind  ReportKind
	Title string

	Scenario   *domain.ScenarioResult
	RateHike   *domain.RateHikeResult
	Claiming   *domain.ClaimingAnalysis
	MonteCarlo *domain.MonteCarloAnalysis

	Assumptions []string
	Warnings    []string
}

// NewScenarioReport wraps a comprehensive tax calculation
func NewScenarioReport(title string, result domain.ScenarioResult) *Report {
	return &Report{Kind: ReportScenario, Title: title, Scenario: &result, Warnings: result.Warnings}
}

// NewRateHikeReport wraps a rate-hike search; baseline is the calculation it started from
func NewRateHikeReport(title string, result domain.RateHikeResult, baseline *domain.ScenarioResult) *Report {
	r := &Report{Kind: ReportRateHike, Title: title, RateHike: &result, Scenario: baseline}
	if baseline != nil {
		r.Warnings = baseline.Warnings
	}
	return r
}

// NewClaimingReport wraps a claiming analysis
func NewClaimingReport(title string, analysis domain.ClaimingAnalysis) *Report {
	return &Report{Kind: ReportClaiming, Title: title, Claiming: &analysis}
}

// NewMonteCarloReport wraps a Monte Carlo analysis
func NewMonteCarloReport(title string, analysis domain.MonteCarloAnalysis) *Report {
	return &Report{Kind: ReportMonteCarlo, Title: title, MonteCarlo: &analysis}
}

// Payload returns the result matching the report kind
func (r *Report) Payload() (any, error) {
	if r == nil {
		return nil, ErrNoScenario
	}
	switch r.Kind {
	case ReportScenario:
		if r.Scenario != nil {
			return r.Scenario, nil
		}
	case ReportRateHike:
		if r.RateHike != nil {
			return r.RateHike, nil
		}
	case ReportClaiming:
		if r.Claiming != nil {
			return r.Claiming, nil
		}
	case ReportMonteCarlo:
		if r.MonteCarlo != nil {
			return r.MonteCarlo, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown report kind %q", ErrNoScenario, r.Kind)
	}
	return nil, fmt.Errorf("%w: %s report is empty", ErrNoScenario, r.Kind)
}

// Writer writes formatted reports to timestamped files under Dir
type Writer struct {
	Dir   string
	Clock clockwork.Clock
}

// NewWriter creates a writer using the wall clock
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Clock: clockwork.NewRealClock()}
}

func (w *Writer) clock() clockwork.Clock {
	if w.Clock == nil {
		return clockwork.NewRealClock()
	}
	return w.Clock
}

// WriteFormatted runs a formatter and writes output to timestamped file with extension.
func (w *Writer) WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("taxengine_%s_%s.%s", report.Kind, w.clock().Now().Format("20060102_150405"), ext)
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", filename, err)
	}
	return filename, nil
}

// GenerateReport writes the report in the named format. "all" writes the verbose
// console report and the detailed CSV.
func (w *Writer) GenerateReport(report *Report, format string) ([]string, error) {
	if strings.EqualFold(strings.TrimSpace(format), "all") {
		var files []string
		for _, name := range []string{"console", "detailed-csv"} {
			file, err := w.WriteFormatted(GetFormatterByName(name), report, Extension(name))
			if err != nil {
				return files, err
			}
			files = append(files, file)
		}
		return files, nil
	}
	f := GetFormatterByName(format)
	if f == nil {
		return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	file, err := w.WriteFormatted(f, report, Extension(f.Name()))
	if err != nil {
		return nil, err
	}
	return []string{file}, nil
}

// GenerateReport writes the report into the working directory
func GenerateReport(report *Report, format string) error {
	_, err := NewWriter(".").GenerateReport(report, format)
	return err
}

// SaveConfiguration writes a scenario file that InputParser can load back
func SaveConfiguration(config *domain.Configuration, filename string) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return os.WriteFile(filename, b, 0644)
}
