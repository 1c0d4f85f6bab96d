package domain

// GenerationRecord is the yearly net output of one generation unit
type GenerationRecord struct {
	Country string  `json:"country" validate:"required"`
	Name    string  `json:"name"`
	EIC     string  `json:"eic" validate:"required"`
	Fuel    Fuel    `json:"fuel" validate:"required,oneof=gas coal lignite oil other"`
	Output  float64 `json:"output"` // MWh, may be negative after consumption offset
}

// EmissionRecord is the yearly verified emissions entry of one ETS installation
type EmissionRecord struct {
	Country     string  `json:"country" validate:"required"`
	Name        string  `json:"name"`
	ID          string  `json:"id" validate:"required"` // permit:installation
	Emissions   float64 `json:"emissions" validate:"gte=0"`
	Allocations float64 `json:"allocations" validate:"gte=0"`
	Sigma       float64 `json:"sigma" validate:"gte=0,lte=1"`
}

// GenerationAlias is the manual match alias for a generation unit that is not referenced by name
func GenerationAlias(eic string) string {
	return "eic:" + eic
}

// EmissionAlias is the manual match alias for an ETS installation that is not referenced by name
func EmissionAlias(id string) string {
	return "id:" + id
}
