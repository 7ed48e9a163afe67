// ABOUTME: CSV ingestion pipeline for raw performance samples.
// ABOUTME: Skips malformed rows, commits accepted rows as one atomic batch.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/physio"
)

// RequiredColumns is the exact, case-sensitive header set an upload must
// contain. Extra columns are ignored.
var RequiredColumns = []string{"time", "Power", "Oxygen", "Cadence", "HR", "RF"}

// ErrFormat indicates the file container is unusable: wrong extension,
// unreadable header, or missing required columns. Nothing is persisted.
var ErrFormat = errors.New("invalid csv format")

// SampleStore is the persistence collaborator the pipeline writes through.
type SampleStore interface {
	GetSession(id uuid.UUID) (*models.Session, error)
	InsertSamples(samples []models.Sample) error
	ListSamples(sessionID uuid.UUID, limit, offset int) ([]models.Sample, error)
	UpdateSessionMetrics(id uuid.UUID, m models.Metrics) error
}

// Result reports the outcome of one ingestion.
type Result struct {
	AcceptedCount   int  `json:"accepted_count"`
	SkippedCount    int  `json:"skipped_count"`
	MetricsComputed bool `json:"metrics_calculated"`
}

// Pipeline parses uploaded CSV files into samples for a session.
type Pipeline struct {
	store SampleStore
}

// NewPipeline creates a Pipeline writing through the given store.
func NewPipeline(store SampleStore) *Pipeline {
	return &Pipeline{store: store}
}

// Ingest parses the delimited content of r into samples for sessionID.
//
// A row whose cells cannot all be coerced to their numeric types is skipped
// and counted; a corrupt row never aborts the import. The accepted batch is
// committed in a single atomic insert: a store failure discards everything.
// When computeAfter is true and at least one row was accepted, metrics are
// recomputed over the session's full current sample set and persisted.
func (p *Pipeline) Ingest(sessionID uuid.UUID, filename string, r io.Reader, computeAfter bool) (*Result, error) {
	if !strings.HasSuffix(filename, ".csv") {
		return nil, fmt.Errorf("%w: file must have a .csv extension", ErrFormat)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrFormat)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var batch []models.Sample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed quoting etc. counts as one bad row
			result.SkippedCount++
			continue
		}

		s, err := decodeRow(sessionID, record, cols)
		if err != nil {
			result.SkippedCount++
			continue
		}
		batch = append(batch, s)
	}

	if len(batch) > 0 {
		if err := p.store.InsertSamples(batch); err != nil {
			return nil, fmt.Errorf("persist samples: %w", err)
		}
	}
	result.AcceptedCount = len(batch)

	if result.SkippedCount > 0 {
		log.Printf("ingest: session %s: skipped %d malformed row(s), accepted %d",
			sessionID, result.SkippedCount, result.AcceptedCount)
	}

	if computeAfter && result.AcceptedCount > 0 {
		if err := p.recompute(sessionID); err != nil {
			return nil, err
		}
		result.MetricsComputed = true
	}

	return result, nil
}

// recompute derives metrics from the session's full current sample set and
// persists them onto the session.
func (p *Pipeline) recompute(sessionID uuid.UUID) error {
	session, err := p.store.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	samples, err := p.store.ListSamples(sessionID, 0, 0)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}

	m := physio.Compute(samples, session.Weight)
	if err := p.store.UpdateSessionMetrics(sessionID, m); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}
	return nil
}

// columnIndex maps each required column to its header position.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required column(s) %s",
			ErrFormat, strings.Join(missing, ", "))
	}
	return idx, nil
}

// decodeRow coerces one data row into a typed Sample. Any cell failure
// rejects the whole row.
func decodeRow(sessionID uuid.UUID, record []string, cols map[string]int) (models.Sample, error) {
	cell := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("row too short for column %s", name)
		}
		return record[i], nil
	}

	timeStr, err := cell("time")
	if err != nil {
		return models.Sample{}, err
	}
	elapsed, err := strconv.Atoi(strings.TrimSpace(timeStr))
	if err != nil {
		return models.Sample{}, fmt.Errorf("decode time: %w", err)
	}

	floats := make(map[string]float64, 5)
	for _, name := range []string{"Power", "Oxygen", "Cadence", "HR", "RF"} {
		raw, err := cell(name)
		if err != nil {
			return models.Sample{}, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return models.Sample{}, fmt.Errorf("decode %s: %w", name, err)
		}
		floats[name] = v
	}

	return *models.NewSample(sessionID, elapsed,
		floats["Power"], floats["Oxygen"], floats["Cadence"], floats["HR"], floats["RF"]), nil
}
