package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel
}

// WriteCSV writes a complete CSV file, replacing any existing file
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	stream, err := w.createStream(path, options.Headers, options.BOMPrefix)
	if err != nil {
		return err
	}
	for _, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.file.Close()
			return apperrors.NewStorageError("write record", err).WithContext("file", path)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError("close CSV file", err).WithContext("file", path)
	}

	w.logger.Info("CSV file written",
		slog.String("file", path),
		slog.Int("record_count", len(options.Records)))
	return nil
}

// StreamWriter writes CSV records one at a time
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	count  int
}

// CreateStreamWriter creates a CSV file and writes the header row
func (w *CSVWriter) CreateStreamWriter(path string, headers []string) (*StreamWriter, error) {
	return w.createStream(path, headers, false)
}

func (w *CSVWriter) createStream(path string, headers []string, bom bool) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("create output directory", err).WithContext("file", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, apperrors.NewStorageError("create CSV file", err).WithContext("file", path)
	}

	if bom {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError("write BOM", err).WithContext("file", path)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError("write headers", err).WithContext("file", path)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.count++
	return nil
}

// Count returns the number of records written
func (s *StreamWriter) Count() int {
	return s.count
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
