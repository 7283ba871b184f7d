package output

import (
	"errors"
	"slices"
	"strings"
)

// ErrUnsupportedFormat is returned for a format name with no registered formatter
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ErrNoScenario is returned when a report carries no result for its kind
var ErrNoScenario = errors.New("report has no result to format")

// Formatter renders a report to bytes. Formatting never touches the filesystem;
// Writer owns file output.
type Formatter interface {
	Format(report *Report) ([]byte, error)
	Name() string
}

// FormatterFunc lets a plain function serve as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*Report) ([]byte, error)
}

func (ff FormatterFunc) Format(r *Report) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                     { return ff.ID }

var builtInFormatters = []Formatter{
	ConsoleVerboseFormatter{},
	ConsoleFormatter{},
	CSVSummarizer{},
	CSVDetailedExporter{},
	JSONFormatter{},
}

// formatAliases maps accepted spellings onto canonical formatter names.
var formatAliases = map[string]string{
	"console-verbose": "console",
	"verbose":         "console",
	"text":            "console",
	"summary":         "console-lite",
	"csv-detailed":    "detailed-csv",
	"csv-summary":     "csv",
	"json-pretty":     "json",
}

// NormalizeFormatName trims, lowercases and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := formatAliases[n]; ok {
		return canonical
	}
	return n
}

// GetFormatterByName returns the formatter for name or an alias of it, nil when unknown.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	i := slices.IndexFunc(builtInFormatters, func(f Formatter) bool { return f.Name() == n })
	if i < 0 {
		return nil
	}
	return builtInFormatters[i]
}

// Extension is the file extension used when a formatter's output is written to disk
func Extension(name string) string {
	switch n := NormalizeFormatName(name); {
	case strings.Contains(n, "csv"):
		return "csv"
	case n == "json":
		return "json"
	default:
		return "txt"
	}
}

// AvailableFormatterNames lists canonical names in sorted order.
func AvailableFormatterNames() []string {
	names := make([]string, len(builtInFormatters))
	for i, f := range builtInFormatters {
		names[i] = f.Name()
	}
	slices.Sort(names)
	return names
}

// AvailableFormatAliases lists the alias spellings in sorted order.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(formatAliases))
	for k := range formatAliases {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
