package matching

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// Ignore reasons set by the automatic matcher
const (
	ReasonMeaninglessName = "seems to be a meaningless generation unit name"
	reasonCandidatesFmt   = "found %d possibly matching ETS records"
)

// emissionCountryAliases maps ETS country codes to the generation data's codes
var emissionCountryAliases = map[string]string{
	"XI": "IE", // Northern Ireland
}

type bucketKey struct {
	country string
	key     string
}

type bucket struct {
	generation []domain.GenerationRecord
	emission   []domain.EmissionRecord
}

// AutoMatcher groups records not claimed by manual matches by (country, key)
type AutoMatcher struct {
	defaultRange PlausibleRange
	logger       *slog.Logger
}

// NewAutoMatcher creates a matcher that assigns defaultRange to new matches
func NewAutoMatcher(defaultRange PlausibleRange, logger *slog.Logger) *AutoMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoMatcher{defaultRange: defaultRange, logger: logger}
}

// Match builds one match per (country, key) bucket of the records not used by manual.
// ETS records only join buckets created by a generation unit. Buckets without a key or
// without exactly one ETS record are returned ignored.
func (a *AutoMatcher) Match(manual []*Match, generation []domain.GenerationRecord, emission []domain.EmissionRecord) ([]*Match, error) {
	manualGeneration := make(map[string]bool)
	manualEmission := make(map[string]bool)
	manualKeys := make(map[string]bool)
	for _, m := range manual {
		for _, g := range m.Generation {
			manualGeneration[g.Name] = true
			manualKeys[Key(g.Name)] = true
		}
		for _, e := range m.Emission {
			manualEmission[e.Name] = true
			manualKeys[Key(e.Name)] = true
		}
	}

	buckets := make(map[bucketKey]*bucket)
	for _, g := range generation {
		if manualGeneration[g.Name] {
			continue
		}
		k := bucketKey{country: g.Country, key: Key(g.Name)}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.generation = append(b.generation, g)
	}

	dropped := 0
	for _, e := range emission {
		if manualEmission[e.Name] {
			continue
		}
		key := Key(e.Name)
		if key == "" {
			continue
		}
		country := e.Country
		if alias, ok := emissionCountryAliases[country]; ok {
			country = alias
		}
		b, ok := buckets[bucketKey{country: country, key: key}]
		if !ok {
			dropped++
			continue
		}
		b.emission = append(b.emission, e)
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].key < keys[j].key
	})

	matches := make([]*Match, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		m, err := NewMatch(k.key, b.generation, b.emission)
		if err != nil {
			return nil, err
		}
		m.PlausibleRange = a.defaultRange

		switch {
		case k.key == "":
			err = m.Ignore(ReasonMeaninglessName)
		case len(b.emission) != 1:
			err = m.Ignore(fmt.Sprintf(reasonCandidatesFmt, len(b.emission)))
		}
		if err != nil {
			return nil, err
		}

		if k.key != "" && manualKeys[k.key] {
			a.warnManualOverlap(m)
		}
		matches = append(matches, m)
	}

	a.logger.Info("Automatic matches built",
		slog.Int("matches", len(matches)),
		slog.Int("unmatched_ets_records", dropped))

	return matches, nil
}

// warnManualOverlap reports an automatic match whose key is also used by a manual match
func (a *AutoMatcher) warnManualOverlap(m *Match) {
	msg := "Similar automatic match in addition to manual match"
	if len(m.Emission) == 0 {
		msg = "Possibly missing generation units for an existing manual match"
	}
	a.logger.Warn(msg,
		slog.String("country", m.Country),
		slog.String("key", m.Name),
		slog.Any("generation", m.GenerationNames()),
		slog.Any("emission", m.EmissionNames()))
}
