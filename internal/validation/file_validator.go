package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// FileValidator checks input files and output directories
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateFile checks that path is a readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("Input file does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError("file " + path)
	}
	if err != nil {
		return apperrors.NewStorageError("stat "+path, err)
	}
	if info.IsDir() {
		return apperrors.NewValidationError(path+" is a directory, not a file", nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(path+" is not readable", err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateFileType checks that path exists and has one of the given extensions
func (v *FileValidator) ValidateFileType(path string, extensions ...string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(extensions, ext) {
		return apperrors.NewValidationError(
			fmt.Sprintf("file %s has extension %q, want one of %v", path, ext, extensions), nil)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewValidationError("file "+path+" is a temporary office file", nil)
	}
	return nil
}

// ValidateFiles checks every path and joins all failures
func (v *FileValidator) ValidateFiles(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if err := v.ValidateFile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateOutputDirectory creates dir if needed and checks that it is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("create output directory "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
