package matching

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

const (
	listSeparator = "|"

	// SettingPlausibleRange overrides the plausible emission factor range of a match
	SettingPlausibleRange = "plausible-emission-factor-range"
)

// Directive is one row of manual_matches.csv
type Directive struct {
	Generation string `json:"generation"` // generation unit names or eic:<code>, pipe separated
	Emission   string `json:"emission"`   // ETS installation names or id:<code>, pipe separated
	Settings   string `json:"settings"`   // key:value pairs, pipe separated
	Comment    string `json:"comment"`
}

// IsComment reports whether the row only carries a comment
func (d Directive) IsComment() bool {
	return d.Generation == "" && d.Emission == ""
}

// GenerationNames returns the listed generation unit names
func (d Directive) GenerationNames() []string {
	if d.Generation == "" {
		return nil
	}
	return strings.Split(d.Generation, listSeparator)
}

// EmissionNames returns the listed ETS installation names
func (d Directive) EmissionNames() []string {
	var names []string
	for _, name := range strings.Split(d.Emission, listSeparator) {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ManualResolver turns manual directives into matches
type ManualResolver struct {
	defaultRange PlausibleRange
	logger       *slog.Logger
}

// NewManualResolver creates a resolver that assigns defaultRange to new matches
func NewManualResolver(defaultRange PlausibleRange, logger *slog.Logger) *ManualResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManualResolver{defaultRange: defaultRange, logger: logger}
}

// Resolve claims the records named by each directive and builds one match per directive.
// Directives without ETS installations produce ignored matches carrying the comment.
func (r *ManualResolver) Resolve(directives []Directive, generation []domain.GenerationRecord, emission []domain.EmissionRecord) ([]*Match, error) {
	var generationNames, emissionNames []string
	for _, d := range directives {
		if d.IsComment() {
			continue
		}
		generationNames = append(generationNames, d.GenerationNames()...)
		emissionNames = append(emissionNames, d.EmissionNames()...)
	}

	generationPool := NewPool[domain.GenerationRecord]("generation", generationNames)
	for _, g := range generation {
		if err := generationPool.Offer(g, g.Name, domain.GenerationAlias(g.EIC)); err != nil {
			return nil, apperrors.NewMatchingError("load manual match generation units", err)
		}
	}

	emissionPool := NewPool[domain.EmissionRecord]("emission", emissionNames)
	for _, e := range emission {
		if err := emissionPool.Offer(e, e.Name, domain.EmissionAlias(e.ID)); err != nil {
			return nil, apperrors.NewMatchingError("load manual match ETS records", err)
		}
	}

	var matches []*Match
	for i, d := range directives {
		if d.IsComment() {
			continue
		}

		m, err := r.resolveDirective(d, generationPool, emissionPool)
		if err != nil {
			return nil, apperrors.NewMatchingError(fmt.Sprintf("manual match %d", i+1), err).
				WithContext("generation", d.Generation).
				WithContext("emission", d.Emission)
		}
		matches = append(matches, m)
	}

	r.logger.Info("Manual matches resolved",
		slog.Int("directives", len(directives)),
		slog.Int("matches", len(matches)))

	return matches, nil
}

func (r *ManualResolver) resolveDirective(d Directive, generationPool *Pool[domain.GenerationRecord], emissionPool *Pool[domain.EmissionRecord]) (*Match, error) {
	names := d.GenerationNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("no generation units listed for %q", d.Emission)
	}

	generation := make([]domain.GenerationRecord, 0, len(names))
	for _, name := range names {
		g, err := generationPool.Claim(name)
		if err != nil {
			return nil, err
		}
		generation = append(generation, g)
	}

	var emission []domain.EmissionRecord
	for _, name := range d.EmissionNames() {
		e, err := emissionPool.Claim(name)
		if err != nil {
			return nil, err
		}
		emission = append(emission, e)
	}

	m, err := NewMatch(ManualMatchName, generation, emission)
	if err != nil {
		return nil, err
	}
	m.PlausibleRange = r.defaultRange

	if len(emission) == 0 {
		if err := m.Ignore("filtered in manual_matches.csv: " + d.Comment); err != nil {
			return nil, err
		}
	}

	if err := applySettings(m, d.Settings); err != nil {
		return nil, err
	}
	return m, nil
}

// applySettings parses "key:value|key:value" settings. Unknown keys are errors.
func applySettings(m *Match, settings string) error {
	parts := strings.Split(settings, listSeparator)
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	for _, setting := range parts {
		key, value, ok := strings.Cut(setting, ":")
		if !ok {
			return fmt.Errorf("bad setting %q", setting)
		}

		switch key {
		case SettingPlausibleRange:
			rng, err := parsePlausibleRange(value)
			if err != nil {
				return err
			}
			m.PlausibleRange = rng
		default:
			return fmt.Errorf("invalid setting %s:%s", key, value)
		}
	}
	return nil
}

func parsePlausibleRange(value string) (PlausibleRange, error) {
	minStr, maxStr, ok := strings.Cut(value, "-")
	if !ok {
		return PlausibleRange{}, fmt.Errorf("bad emission factor range %q", value)
	}
	lo, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return PlausibleRange{}, fmt.Errorf("bad minimum plausible emission factor %q: %w", minStr, err)
	}
	hi, err := strconv.ParseFloat(maxStr, 64)
	if err != nil {
		return PlausibleRange{}, fmt.Errorf("bad maximum plausible emission factor %q: %w", maxStr, err)
	}
	return PlausibleRange{Min: lo, Max: hi}, nil
}
