package domain

// Fuel is the fuel category of a generation unit
type Fuel string

const (
	FuelGas     Fuel = "gas"
	FuelCoal    Fuel = "coal"
	FuelLignite Fuel = "lignite"
	FuelOil     Fuel = "oil"
	FuelOther   Fuel = "other"

	// FuelCoalLignite is the synthetic bucket summing coal and lignite rows
	FuelCoalLignite Fuel = "coal+lignite"
)

// ParseFuel returns the fuel for a category name and whether it is known
func ParseFuel(s string) (Fuel, bool) {
	switch f := Fuel(s); f {
	case FuelGas, FuelCoal, FuelLignite, FuelOil, FuelOther:
		return f, true
	default:
		return "", false
	}
}

// IsFossil reports whether the fuel is relevant for emission factor reporting
func (f Fuel) IsFossil() bool {
	return f != FuelOther && f != ""
}
