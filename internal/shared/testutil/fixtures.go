package testutil

import "github.com/w-flo/eu-emission-factors/pkg/contracts/domain"

// Generation returns a generation unit record with a derived EIC
func Generation(country, name string, fuel domain.Fuel, output float64) domain.GenerationRecord {
	return domain.GenerationRecord{
		Country: country,
		Name:    name,
		EIC:     "EIC-" + country + "-" + name,
		Fuel:    fuel,
		Output:  output,
	}
}

// Emission returns an ETS installation record with a derived ID
func Emission(country, name string, emissions, allocations, sigma float64) domain.EmissionRecord {
	return domain.EmissionRecord{
		Country:     country,
		Name:        name,
		ID:          country + "-permit:" + name,
		Emissions:   emissions,
		Allocations: allocations,
		Sigma:       sigma,
	}
}
