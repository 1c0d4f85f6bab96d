package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/internal/validation"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// CSV headers of the preprocessed record files and manual_matches.csv
var (
	GenerationHeader = []string{"country", "name", "eic", "fuel", "output"}
	EmissionHeader   = []string{"country", "name", "id", "emissions", "allocations", "sigma"}
	DirectiveHeader  = []string{"generation", "emission", "settings", "comment"}
)

// FormatFloat renders a float the way all CSV outputs do
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteGenerationCSV writes generation records with a header row
func WriteGenerationCSV(w io.Writer, records []domain.GenerationRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(GenerationHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Country, r.Name, r.EIC, string(r.Fuel), FormatFloat(r.Output)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEmissionCSV writes ETS installation records with a header row
func WriteEmissionCSV(w io.Writer, records []domain.EmissionRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(EmissionHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Country, r.Name, r.ID, FormatFloat(r.Emissions), FormatFloat(r.Allocations), FormatFloat(r.Sigma)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadGenerationCSV reads and validates generation records
func ReadGenerationCSV(r io.Reader) ([]domain.GenerationRecord, error) {
	v := validation.NewRecordValidator()
	var out []domain.GenerationRecord
	err := readCSV(r, GenerationHeader, func(cols columns, record []string) error {
		output, err := strconv.ParseFloat(cols.get(record, "output"), 64)
		if err != nil {
			return fmt.Errorf("bad output: %w", err)
		}
		rec := domain.GenerationRecord{
			Country: cols.get(record, "country"),
			Name:    cols.get(record, "name"),
			EIC:     cols.get(record, "eic"),
			Fuel:    domain.Fuel(cols.get(record, "fuel")),
			Output:  output,
		}
		if err := v.Struct(rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadEmissionCSV reads and validates ETS installation records
func ReadEmissionCSV(r io.Reader) ([]domain.EmissionRecord, error) {
	v := validation.NewRecordValidator()
	var out []domain.EmissionRecord
	err := readCSV(r, EmissionHeader, func(cols columns, record []string) error {
		var values [3]float64
		for i, name := range []string{"emissions", "allocations", "sigma"} {
			f, err := strconv.ParseFloat(cols.get(record, name), 64)
			if err != nil {
				return fmt.Errorf("bad %s: %w", name, err)
			}
			values[i] = f
		}
		rec := domain.EmissionRecord{
			Country:     cols.get(record, "country"),
			Name:        cols.get(record, "name"),
			ID:          cols.get(record, "id"),
			Emissions:   values[0],
			Allocations: values[1],
			Sigma:       values[2],
		}
		if err := v.Struct(rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadDirectivesCSV reads manual_matches.csv. A row like ",,,DE" is a comment.
func ReadDirectivesCSV(r io.Reader) ([]matching.Directive, error) {
	var out []matching.Directive
	err := readCSV(r, DirectiveHeader, func(cols columns, record []string) error {
		out = append(out, matching.Directive{
			Generation: cols.get(record, "generation"),
			Emission:   cols.get(record, "emission"),
			Settings:   cols.get(record, "settings"),
			Comment:    cols.get(record, "comment"),
		})
		return nil
	})
	return out, err
}

// readCSV calls fn for every data row. Fields are trimmed and rows must have as many
// fields as the header.
func readCSV(r io.Reader, required []string, fn func(columns, []string) error) error {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return apperrors.NewParsingError("empty CSV file", nil)
	}
	if err != nil {
		return apperrors.NewParsingError("read CSV header", err)
	}
	cols, err := headerColumns(header, required...)
	if err != nil {
		return apperrors.NewParsingError("CSV header", err)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return apperrors.NewParsingError("badly formatted CSV", err).WithContext("line", line)
		}
		if err := fn(cols, record); err != nil {
			return apperrors.NewParsingError("bad CSV record", err).WithContext("line", line)
		}
	}
}

// ReadGenerationFile reads powerplant_generation.csv
func ReadGenerationFile(path string) ([]domain.GenerationRecord, error) {
	return readFile(path, ReadGenerationCSV)
}

// ReadEmissionFile reads powerplant_emissions.csv
func ReadEmissionFile(path string) ([]domain.EmissionRecord, error) {
	return readFile(path, ReadEmissionCSV)
}

// ReadDirectivesFile reads manual_matches.csv
func ReadDirectivesFile(path string) ([]matching.Directive, error) {
	return readFile(path, ReadDirectivesCSV)
}

// WriteGenerationFile writes powerplant_generation.csv
func WriteGenerationFile(path string, records []domain.GenerationRecord) error {
	return WriteFile(path, func(w io.Writer) error { return WriteGenerationCSV(w, records) })
}

// WriteEmissionFile writes powerplant_emissions.csv
func WriteEmissionFile(path string, records []domain.EmissionRecord) error {
	return WriteFile(path, func(w io.Writer) error { return WriteEmissionCSV(w, records) })
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, apperrors.NewStorageError("open "+filepath.Base(path), err).WithContext("file", path)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return out, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// WriteFile creates path, including missing directories, and fills it with write
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create directory", err).WithContext("file", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create "+filepath.Base(path), err).WithContext("file", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return apperrors.NewStorageError("write "+filepath.Base(path), err).WithContext("file", path)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("close "+filepath.Base(path), err).WithContext("file", path)
	}
	return nil
}
