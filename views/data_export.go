package views

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"har-prep/models"
)

// CSVWriter is a buffered CSV writer for dataset tables.
//
// The underlying bufio.Writer absorbs write syscall overhead; errors from
// buffered row writes surface on Close.
type CSVWriter struct {
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	rows uint64
}

// NewCSVWriter opens (or creates) a file and writes the header row.
func NewCSVWriter(path string, bufSizeBytes int, writeHeader bool, header []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	if bufSizeBytes <= 0 {
		bufSizeBytes = 256 * 1024 // 256 KB default
	}

	bw := bufio.NewWriterSize(f, bufSizeBytes)
	cw := csv.NewWriter(bw)

	w := &CSVWriter{file: f, buf: bw, csv: cw}

	if writeHeader && len(header) > 0 {
		if err := cw.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv write header: %w", err)
		}
	}
	return w, nil
}

// WriteRow appends a single CSV row.
func (w *CSVWriter) WriteRow(row []string) error {
	w.rows++
	return w.csv.Write(row)
}

// Rows returns the number of data rows written (excludes header).
func (w *CSVWriter) Rows() uint64 { return w.rows }

// Close flushes remaining data and closes the file, reporting any
// buffered write error.
func (w *CSVWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("csv flush: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("csv flush: %w", err)
	}
	return w.file.Close()
}

// ExportDataset persists one table under dir with the canonical column
// order, returning the number of rows written.
func ExportDataset(dir, name string, ds *models.Dataset, bufSizeKB int, writeHeader bool) (uint64, error) {
	w, err := NewCSVWriter(filepath.Join(dir, name), bufSizeKB*1024, writeHeader, ds.CSVHeader())
	if err != nil {
		return 0, err
	}
	for i := range ds.Rows {
		if err := w.WriteRow(ds.CSVRow(i)); err != nil {
			w.Close()
			return 0, fmt.Errorf("csv write %s row %d: %w", name, i, err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.Rows(), nil
}
