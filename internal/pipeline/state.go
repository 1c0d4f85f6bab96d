package pipeline

import (
	"time"

	"github.com/w-flo/eu-emission-factors/internal/emissions"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// State carries the data of one run between its steps
type State struct {
	RunID     string
	Year      int
	StartedAt time.Time

	Generation []domain.GenerationRecord
	Emission   []domain.EmissionRecord
	// Countries with ETS installations, set by preprocess
	Countries []string

	Directives []matching.Directive
	DegreeDays *emissions.DegreeDayTable
	// StaleDegreeDays is set when the degree day table ends before Year
	StaleDegreeDays bool

	ManualMatches int
	AutoMatches   int
	Matches       []*matching.Match
	Stats         []domain.FuelStat

	Steps []StepResult

	manual map[*matching.Match]bool
}

// NewState creates the state for a run
func NewState(runID string, year int) *State {
	return &State{RunID: runID, Year: year, StartedAt: time.Now().UTC()}
}

// ActiveMatches counts matches that were not ignored
func (s *State) ActiveMatches() int {
	n := 0
	for _, m := range s.Matches {
		if !m.IsIgnored() {
			n++
		}
	}
	return n
}

// Step returns the result of the step with id
func (s *State) Step(id string) (StepResult, bool) {
	for _, r := range s.Steps {
		if r.ID == id {
			return r, true
		}
	}
	return StepResult{}, false
}
