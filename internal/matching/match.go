package matching

import (
	"errors"
	"fmt"
	"sort"

	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// ManualMatchName is the name of every match created from a manual directive
const ManualMatchName = "Manual Match"

// dominantFuelShare is the share of the total output a fuel needs to define the plant's fuel
const dominantFuelShare = 0.95

var (
	// ErrAlreadyIgnored is returned when an ignored match is ignored a second time
	ErrAlreadyIgnored = errors.New("match is already ignored")
	// ErrEmptyReason is returned when a match is ignored without a reason
	ErrEmptyReason = errors.New("ignore reason must not be empty")
	// ErrNoGeneration is returned when a match would have no generation unit
	ErrNoGeneration = errors.New("match needs at least one generation unit")
)

// PlausibleRange is the half-open interval [Min, Max) of acceptable emission factors in kg/MWh
type PlausibleRange struct {
	Min float64
	Max float64
}

// DefaultPlausibleRange is used unless a manual directive or the configuration overrides it
var DefaultPlausibleRange = PlausibleRange{Min: 0, Max: 2000}

// Contains reports whether v lies within the range
func (r PlausibleRange) Contains(v float64) bool {
	return r.Min <= v && v < r.Max
}

// Status is either active or ignored with a reason. Ignored is terminal.
type Status struct {
	ignored bool
	reason  string
}

// IsIgnored reports whether the status is ignored
func (s Status) IsIgnored() bool {
	return s.ignored
}

// Reason returns the ignore reason, "" for active matches
func (s Status) Reason() string {
	return s.reason
}

// String returns "active" or "ignored: <reason>"
func (s Status) String() string {
	if s.ignored {
		return "ignored: " + s.reason
	}
	return "active"
}

// CHPResult holds the outcome of the heat/electricity disaggregation of a match
type CHPResult struct {
	GenerationHeat float64
	EmissionsHeat  float64
	EmissionsEl    float64
	EmissionFactor float64
}

// Match is one physical power plant: one or more generation units and the ETS
// installations they are reported under.
type Match struct {
	Country    string
	Name       string
	Generation []domain.GenerationRecord
	Emission   []domain.EmissionRecord

	// Fuel is the dominant fuel, "" for plants using mixed fuels
	Fuel  domain.Fuel
	Sigma float64

	GenerationEl   float64
	GenerationHeat float64
	EmissionsHeat  float64
	EmissionsEl    float64
	EmissionFactor float64

	PlausibleRange PlausibleRange

	status   Status
	computed bool
}

// NewMatch creates an active match. The country is taken from the first generation unit.
func NewMatch(name string, generation []domain.GenerationRecord, emission []domain.EmissionRecord) (*Match, error) {
	if len(generation) == 0 {
		return nil, fmt.Errorf("create match %q: %w", name, ErrNoGeneration)
	}

	outputSum := 0.0
	fuelMix := make(map[domain.Fuel]float64)
	for _, g := range generation {
		fuelMix[g.Fuel] += g.Output
		outputSum += g.Output
	}

	return &Match{
		Country:        generation[0].Country,
		Name:           name,
		Generation:     generation,
		Emission:       emission,
		Fuel:           dominantFuel(fuelMix, outputSum),
		Sigma:          weightedSigma(emission),
		GenerationEl:   outputSum,
		PlausibleRange: DefaultPlausibleRange,
	}, nil
}

// dominantFuel is the first fuel, in name order, with a positive output of at least
// dominantFuelShare of total. Negative outputs of other fuels lower the total, so a
// fuel can dominate a zero or negative total.
func dominantFuel(fuelMix map[domain.Fuel]float64, total float64) domain.Fuel {
	fuels := make([]domain.Fuel, 0, len(fuelMix))
	for fuel := range fuelMix {
		fuels = append(fuels, fuel)
	}
	sort.Slice(fuels, func(i, j int) bool { return fuels[i] < fuels[j] })

	for _, fuel := range fuels {
		if out := fuelMix[fuel]; out > 0 && out >= dominantFuelShare*total {
			return fuel
		}
	}
	return ""
}

// weightedSigma is the allocation weighted share of privileged heat
func weightedSigma(emission []domain.EmissionRecord) float64 {
	privileged, total := 0.0, 0.0
	for _, e := range emission {
		privileged += e.Sigma * e.Allocations
		total += e.Allocations
	}
	if privileged == 0 {
		return 0
	}
	return privileged / total
}

// Status returns the current status
func (m *Match) Status() Status {
	return m.status
}

// IsIgnored reports whether the match has been ignored
func (m *Match) IsIgnored() bool {
	return m.status.ignored
}

// IgnoreReason returns the reason the match was ignored, "" if it is active
func (m *Match) IgnoreReason() string {
	return m.status.reason
}

// Ignore transitions the match to ignored. Ignoring twice is an error.
func (m *Match) Ignore(reason string) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if m.status.ignored {
		return fmt.Errorf("ignore %s %q (%q): %w", m.Country, m.Name, reason, ErrAlreadyIgnored)
	}
	m.status = Status{ignored: true, reason: reason}
	return nil
}

// HasFuel reports whether a single fuel dominates the plant's output
func (m *Match) HasFuel() bool {
	return m.Fuel != ""
}

// EmissionSum is the total verified emissions in t CO2
func (m *Match) EmissionSum() float64 {
	sum := 0.0
	for _, e := range m.Emission {
		sum += e.Emissions
	}
	return sum
}

// AllocationSum is the total free allocation in t CO2
func (m *Match) AllocationSum() float64 {
	sum := 0.0
	for _, e := range m.Emission {
		sum += e.Allocations
	}
	return sum
}

// SetCHPResult stores the computed heat/electricity split
func (m *Match) SetCHPResult(r CHPResult) {
	m.GenerationHeat = r.GenerationHeat
	m.EmissionsHeat = r.EmissionsHeat
	m.EmissionsEl = r.EmissionsEl
	m.EmissionFactor = r.EmissionFactor
	m.computed = true
}

// IsComputed reports whether an emission factor has been computed
func (m *Match) IsComputed() bool {
	return m.computed
}

// GenerationNames returns the names of all generation units
func (m *Match) GenerationNames() []string {
	names := make([]string, len(m.Generation))
	for i, g := range m.Generation {
		names[i] = g.Name
	}
	return names
}

// EmissionNames returns the names of all ETS installations
func (m *Match) EmissionNames() []string {
	names := make([]string, len(m.Emission))
	for i, e := range m.Emission {
		names[i] = e.Name
	}
	return names
}

// firstGenerationName is the last ordering criterion
func (m *Match) firstGenerationName() string {
	if len(m.Generation) == 0 {
		return ""
	}
	return m.Generation[0].Name
}
