// Package emissions splits the verified emissions of combined heat and power plants into
// a heat and an electricity share and derives the electricity emission factor.
//
// The heat output of a plant is estimated from its free ETS allocation: allocations are
// granted per heat benchmark, reduced by the linear reduction factor (beta) and, for
// non-privileged heat, by the carbon leakage exposure factor (gamma). The non-privileged
// part is scaled by the heating degree days of the year relative to the 2014-2018
// baseline. Emissions are then apportioned with the efficiency method.
package emissions
