// Package jobquery applies search filters to job lists.
// All functions are pure and never modify their inputs.
package jobquery

import (
	"strconv"
	"strings"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// Filter is a structured job search. Empty fields mean "no constraint".
type Filter struct {
	Status         models.JobStatus   `json:"status,omitempty" jsonschema:"enum=New,enum=In Progress,enum=Completed,description=Filter by job status."`
	VehicleType    models.VehicleType `json:"vehicleType,omitempty" jsonschema:"enum=Car,enum=Motorcycle,enum=Truck,enum=Van,description=Filter by vehicle type."`
	Location       string             `json:"location,omitempty" jsonschema:"description=Filter by a specific location or city."`
	AssignedToName string             `json:"assignedToName,omitempty" jsonschema:"description=Filter by the name of the assigned driver."`
	Category       string             `json:"category,omitempty" jsonschema:"description=Filter by job category (e.g. Punktering or Olycka)."`
	Priority       models.Priority    `json:"priority,omitempty" jsonschema:"enum=Hög,enum=Normal,enum=Låg,description=Filter by job priority."`
	SearchText     string             `json:"searchText,omitempty" jsonschema:"description=Any remaining search text not covered by other filters."`
}

// IsEmpty reports whether f constrains nothing.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Applied is a filter that took effect, labelled for display.
type Applied struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Result is the outcome of a search.
type Result struct {
	Jobs    []models.Job `json:"jobs"`
	Applied []Applied    `json:"applied"`
}

// Apply narrows jobs by every non-empty field of f, in field order.
// Equality is exact for status, vehicle type and priority. Location and
// category match case-insensitive substrings. AssignedToName resolves to the
// first user whose name contains it; when no user matches, that filter is
// skipped. SearchText matches job id, plate, description and customer name.
func Apply(jobs []models.Job, users []models.User, f Filter) Result {
	res := Result{Jobs: append([]models.Job{}, jobs...), Applied: []Applied{}}

	if f.Status != "" {
		res.keep(func(j models.Job) bool { return j.Status == f.Status })
		res.applied("Status", string(f.Status))
	}
	if f.VehicleType != "" {
		res.keep(func(j models.Job) bool { return j.Vehicle.Type == f.VehicleType })
		res.applied("Fordonstyp", string(f.VehicleType))
	}
	if f.Location != "" {
		res.keep(func(j models.Job) bool { return containsFold(j.Location, f.Location) })
		res.applied("Plats", f.Location)
	}
	if f.AssignedToName != "" {
		if u, ok := findUserByName(users, f.AssignedToName); ok {
			res.keep(func(j models.Job) bool { return j.AssignedTo == u.ID })
			res.applied("Förare", u.Name)
		}
	}
	if f.Category != "" {
		res.keep(func(j models.Job) bool { return j.Category != "" && containsFold(j.Category, f.Category) })
		res.applied("Kategori", f.Category)
	}
	if f.Priority != "" {
		res.keep(func(j models.Job) bool { return j.Priority == f.Priority })
		res.applied("Prioritet", string(f.Priority))
	}
	if f.SearchText != "" {
		res.keep(func(j models.Job) bool {
			return containsFold(j.ID, f.SearchText) ||
				containsFold(j.Vehicle.LicensePlate, f.SearchText) ||
				containsFold(j.Description, f.SearchText) ||
				containsFold(j.Customer.Name, f.SearchText)
		})
		res.applied("Fritext", f.SearchText)
	}
	return res
}

// Fallback is the plain search used when filter extraction fails: a job
// matches when any of its scalar fields contains query, case-insensitively.
func Fallback(jobs []models.Job, query string) Result {
	res := Result{Jobs: []models.Job{}, Applied: []Applied{{Label: "Sökterm", Value: query}}}
	for _, j := range jobs {
		for _, field := range searchableFields(j) {
			if containsFold(field, query) {
				res.Jobs = append(res.Jobs, j)
				break
			}
		}
	}
	return res
}

func (r *Result) keep(pred func(models.Job) bool) {
	kept := r.Jobs[:0]
	for _, j := range r.Jobs {
		if pred(j) {
			kept = append(kept, j)
		}
	}
	r.Jobs = kept
}

func (r *Result) applied(label, value string) {
	r.Applied = append(r.Applied, Applied{Label: label, Value: value})
}

func findUserByName(users []models.User, name string) (models.User, bool) {
	for _, u := range users {
		if containsFold(u.Name, name) {
			return u, true
		}
	}
	return models.User{}, false
}

func searchableFields(j models.Job) []string {
	return []string{
		j.ID, j.Location, j.Destination, j.Description, string(j.Status),
		j.AssignedTo, j.Category, string(j.Priority), j.DestinationNotes,
		j.KeysLocation, j.InsuranceCompany,
		j.Vehicle.Make, j.Vehicle.Model, j.Vehicle.LicensePlate,
		string(j.Vehicle.Type), strconv.Itoa(j.Vehicle.Mileage), j.Vehicle.VIN,
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
