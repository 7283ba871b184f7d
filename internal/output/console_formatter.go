package output

import (
	"bytes"
	"fmt"
	"strings"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	if _, err := report.Payload(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	title := report.Title
	if title == "" {
		title = strings.ToUpper(strings.ReplaceAll(string(report.Kind), "_", " ")) + " SUMMARY"
	}
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, strings.Repeat("=", len(title)))
	fmt.Fprintln(&buf, Headline(report))
	if report.Kind == ReportClaiming {
		for _, rec := range report.Claiming.Recommendations {
			fmt.Fprintf(&buf, "  - %s\n", rec)
		}
	}
	if n := len(report.Warnings); n > 0 {
		fmt.Fprintf(&buf, "%d warning(s); run with --format console for details\n", n)
	}
	return buf.Bytes(), nil
}
