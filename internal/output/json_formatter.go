package output

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// JSONFormatter serializes the report payload inside a pretty-printed envelope.
// A zero value stamps reports with the wall clock and a random ID.
type JSONFormatter struct {
	Clock clockwork.Clock
	NewID func() uuid.UUID
}

// Envelope is the top-level JSON document
type Envelope struct {
	ID          string     `json:"id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Kind        ReportKind `json:"kind"`
	Title       string     `json:"title,omitempty"`
	Assumptions []string   `json:"assumptions,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
	Payload     any        `json:"payload"`
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	payload, err := report.Payload()
	if err != nil {
		return nil, err
	}
	clock := j.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	newID := j.NewID
	if newID == nil {
		newID = uuid.New
	}
	env := Envelope{
		ID:          newID().String(),
		GeneratedAt: clock.Now().UTC(),
		Kind:        report.Kind,
		Title:       report.Title,
		Assumptions: report.Assumptions,
		Warnings:    report.Warnings,
		Payload:     payload,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
