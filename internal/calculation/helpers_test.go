package calculation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rpgo/tax-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

// assertDecimal checks that actual is within a cent of expected
func assertDecimal(t *testing.T, expected, actual decimal.Decimal, what string) {
	t.Helper()
	assertDecimalWithin(t, expected, actual, dec("0.01"), what)
}

func assertDecimalWithin(t *testing.T, expected, actual, tolerance decimal.Decimal, what string) {
	t.Helper()
	diff := expected.Sub(actual).Abs()
	assert.Truef(t, diff.LessThanOrEqual(tolerance), "%s: expected %s, got %s (tolerance %s)",
		what, expected.String(), actual.String(), tolerance.String())
}

func base(id string, amount int64) domain.SourceBase {
	return domain.SourceBase{ID: id, Name: id, Amount: decimal.NewFromInt(amount), Frequency: domain.Yearly, Owner: domain.OwnerTaxpayer}
}

func spouseBase(id string, amount int64) domain.SourceBase {
	b := base(id, amount)
	b.Owner = domain.OwnerSpouse
	return b
}

// recordingLogger keeps formatted messages per level
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

func (l *recordingLogger) Debugf(format string, args ...any) {}
func (l *recordingLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Errorf(format string, args ...any) {}

// countingObserver counts evaluations and searches per operation
type countingObserver struct {
	mu          sync.Mutex
	evaluations map[string]int
	searches    map[string]int
	searchEvals map[string]int
	elapsed     map[string]time.Duration
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		evaluations: make(map[string]int),
		searches:    make(map[string]int),
		searchEvals: make(map[string]int),
		elapsed:     make(map[string]time.Duration),
	}
}

func (o *countingObserver) ObserveEvaluation(op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evaluations[op]++
}

func (o *countingObserver) ObserveSearch(op string, elapsed time.Duration, evaluations int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searches[op]++
	o.searchEvals[op] += evaluations
	o.elapsed[op] += elapsed
}
