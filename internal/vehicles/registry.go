// Package vehicles is the license plate registry consulted by dispatchers and,
// through the getVehicleInfoByLicensePlate tool, by the model.
package vehicles

import (
	"sort"
	"strings"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var records = []models.VehicleRecord{
	{LicensePlate: "REG 123", Make: "Volvo", Model: "XC60", VIN: "YV1DZ835C6F123456", InsuranceCompany: "If"},
	{LicensePlate: "AUD 456", Make: "Audi", Model: "A4", VIN: "WAUZZZ8K5DA098765", InsuranceCompany: "Trygg-Hansa"},
	{LicensePlate: "TRU 789", Make: "Scania", Model: "R-series", VIN: "YS2R4X20001234567", InsuranceCompany: "Dina Försäkringar"},
	{LicensePlate: "VAN 101", Make: "Ford", Model: "Transit", VIN: "WF0XXXTTGXGY12345", InsuranceCompany: "Länsförsäkringar"},
	{LicensePlate: "MC 202", Make: "Kawasaki", Model: "Ninja 400", VIN: "JKBRGHYU879SDF987", InsuranceCompany: "Bilsport & MC"},
	{LicensePlate: "TES 303", Make: "Tesla", Model: "Model Y", VIN: "5YJYGDEE3LF123456", InsuranceCompany: "If"},
}

var byPlate = func() map[string]models.VehicleRecord {
	m := make(map[string]models.VehicleRecord, len(records))
	for _, r := range records {
		m[r.LicensePlate] = r
	}
	return m
}()

// NormalizePlate trims surrounding whitespace and upper-cases the plate using
// Swedish casing rules, so "åbc 123" and " ÅBC 123" compare equal.
func NormalizePlate(plate string) string {
	return cases.Upper(language.Swedish).String(strings.TrimSpace(plate))
}

// Lookup returns the registry entry for plate. Inner spacing must match
// exactly; only case and surrounding whitespace are ignored.
func Lookup(plate string) (models.VehicleRecord, bool) {
	r, ok := byPlate[NormalizePlate(plate)]
	return r, ok
}

// All returns every registered vehicle sorted by plate.
func All() []models.VehicleRecord {
	out := make([]models.VehicleRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].LicensePlate < out[j].LicensePlate })
	return out
}
