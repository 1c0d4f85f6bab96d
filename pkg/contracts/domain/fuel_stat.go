package domain

// AllCountries is the country key of the rollup over every country
const AllCountries = ""

// FuelStat is the per country and fuel summary of matched power plants
type FuelStat struct {
	Country            string   `json:"country"`
	Fuel               Fuel     `json:"fuel"`
	TotalGeneration    float64  `json:"total_generation"`
	MatchedGeneration  float64  `json:"matched_generation"`
	CoveragePercentage float64  `json:"coverage_percentage"`
	EmissionsEl        float64  `json:"emissions_el"`
	EmissionsHeat      float64  `json:"emissions_heat"`
	EmissionFactor     *float64 `json:"emission_factor,omitempty"` // kg CO2/MWh, nil without matched generation
}

// Add sums the totals of another stat into s
func (s *FuelStat) Add(other FuelStat) {
	s.TotalGeneration += other.TotalGeneration
	s.MatchedGeneration += other.MatchedGeneration
	s.EmissionsEl += other.EmissionsEl
	s.EmissionsHeat += other.EmissionsHeat
}

// Finalize derives coverage and emission factor from the summed totals
func (s *FuelStat) Finalize() {
	if s.TotalGeneration > 0 {
		s.CoveragePercentage = 100 * s.MatchedGeneration / s.TotalGeneration
	} else {
		s.CoveragePercentage = 100
	}

	s.EmissionFactor = nil
	if s.MatchedGeneration > 0 {
		ef := 1000 * s.EmissionsEl / s.MatchedGeneration
		s.EmissionFactor = &ef
	}
}
