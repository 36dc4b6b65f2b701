// Package records models the CSV rows flowing through the enrichment
// pipeline: a reader that loads the full input into memory, batch
// partitioning, and a writer that appends completed batches to the output
// file as they finish.
package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/logging"
)

// Header is the fixed output column order. Input files must carry the same
// columns; extra input columns are rejected rather than silently dropped.
var Header = []string{
	"id", "file_name", "alt_text", "created_at", "mime_type",
	"width", "height", "duration", "status", "error",
}

// Row is one catalog media record.
type Row struct {
	ID        string
	FileName  string
	AltText   string
	CreatedAt string
	MimeType  string
	Width     string
	Height    string
	Duration  string
	Status    string
	Error     string

	// ResolvedURL is the index lookup result carried between pipeline
	// stages. It is never serialized.
	ResolvedURL string
}

// fields returns the row in Header order.
func (r Row) fields() []string {
	return []string{
		r.ID, r.FileName, r.AltText, r.CreatedAt, r.MimeType,
		r.Width, r.Height, r.Duration, r.Status, r.Error,
	}
}

// rowFromFields builds a Row from a record in Header order.
func rowFromFields(fields []string) Row {
	return Row{
		ID:        fields[0],
		FileName:  fields[1],
		AltText:   fields[2],
		CreatedAt: fields[3],
		MimeType:  fields[4],
		Width:     fields[5],
		Height:    fields[6],
		Duration:  fields[7],
		Status:    fields[8],
		Error:     fields[9],
	}
}

// ReadAll loads every row of the CSV at path into memory. The first record
// must match Header exactly.
func ReadAll(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rowFromFields(record))
	}
	return rows, nil
}

func validateHeader(header []string) error {
	if len(header) != len(Header) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(Header))
	}
	for i, name := range Header {
		if header[i] != name {
			return fmt.Errorf("header column %d is %q, want %q", i+1, header[i], name)
		}
	}
	return nil
}

// Partition splits rows into consecutive batches of at most batchSize,
// preserving order. The final batch holds the remainder.
func Partition(rows []Row, batchSize int) [][]Row {
	if batchSize <= 0 || len(rows) == 0 {
		if len(rows) == 0 {
			return nil
		}
		return [][]Row{rows}
	}

	batches := make([][]Row, 0, (len(rows)+batchSize-1)/batchSize)
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}

// Writer appends completed batches to the output CSV. The header is written
// once at creation; each Append flushes to disk so finished batches survive a
// crash mid-run.
type Writer struct {
	file   *os.File
	csv    *csv.Writer
	rows   int
	logger zerolog.Logger
}

// NewWriter creates (or truncates) the output file and writes the header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	w := &Writer{
		file:   f,
		csv:    csv.NewWriter(f),
		logger: logging.NewLogger("records-writer"),
	}
	if err := w.csv.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush header: %w", err)
	}
	return w, nil
}

// Append writes one completed batch and flushes it.
func (w *Writer) Append(batch []Row) error {
	for _, row := range batch {
		if err := w.csv.Write(row.fields()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}

	w.rows += len(batch)
	w.logger.Debug().
		Int("batch_rows", len(batch)).
		Int("total_rows", w.rows).
		Msg("Batch appended")
	return nil
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes and closes the output file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
