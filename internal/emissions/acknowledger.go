package emissions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// ErrNotAcknowledged is returned when a warning is refused
var ErrNotAcknowledged = errors.New("warning not acknowledged")

// Acknowledger decides whether processing continues after a data quality warning
type Acknowledger interface {
	Acknowledge(warning string) error
}

// AcknowledgerFunc adapts a function to Acknowledger
type AcknowledgerFunc func(warning string) error

// Acknowledge calls f
func (f AcknowledgerFunc) Acknowledge(warning string) error {
	return f(warning)
}

// PromptAcknowledger prints the warning and waits for the operator to press enter
type PromptAcknowledger struct {
	In  io.Reader
	Out io.Writer
}

// Acknowledge blocks until a line is read from In. End of input refuses.
func (p PromptAcknowledger) Acknowledge(warning string) error {
	fmt.Fprintf(p.Out, "WARNING! %s\n", warning)
	fmt.Fprintln(p.Out, "Ignoring this will lead to even worse data for combined heat and power plants.")
	fmt.Fprintln(p.Out, "To continue anyway, press enter.")

	_, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAcknowledged, err)
	}
	return nil
}

// RejectStale refuses every warning. Used when nobody can answer a prompt.
type RejectStale struct{}

// Acknowledge always fails
func (RejectStale) Acknowledge(warning string) error {
	return apperrors.NewAbortedError(warning, ErrNotAcknowledged).
		WithContext("hint", "rerun with -accept-stale-degree-days to continue anyway")
}

// AcceptStale accepts every warning and logs it
type AcceptStale struct {
	Logger *slog.Logger
}

// Acknowledge logs the warning and continues
func (a AcceptStale) Acknowledge(warning string) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("Continuing despite warning", slog.String("warning", warning))
	return nil
}
