package jobquery

import (
	"testing"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

var testUsers = []models.User{
	{ID: "user-1", Name: "Anna Andersson", Role: models.RoleDispatcher},
	{ID: "user-2", Name: "Erik Eriksson", Role: models.RoleDriver},
	{ID: "user-3", Name: "Sara Svensson", Role: models.RoleDriver},
}

var testJobs = []models.Job{
	{
		ID: "RA-8463", Status: models.JobStatusNew, Location: "E4, Stockholm", Description: "Motorstopp i vänster fil",
		Customer: models.Customer{Name: "Lars Larsson"}, Vehicle: models.Vehicle{LicensePlate: "REG 123", Type: models.VehicleCar, Make: "Volvo"},
		Category: "Mekaniskt fel", Priority: models.PriorityHigh,
	},
	{
		ID: "RA-8464", Status: models.JobStatusInProgress, Location: "Uppsala centrum", Description: "Punktering",
		Customer: models.Customer{Name: "Maria Nilsson"}, Vehicle: models.Vehicle{LicensePlate: "TRU 789", Type: models.VehicleTruck, Make: "Scania"},
		AssignedTo: "user-2", Category: "Punktering", Priority: models.PriorityNormal,
	},
	{
		ID: "RA-8465", Status: models.JobStatusCompleted, Location: "Arlanda, Stockholm", Description: "Batteriet dött",
		Customer: models.Customer{Name: "Johan Berg"}, Vehicle: models.Vehicle{LicensePlate: "TES 303", Type: models.VehicleCar, Make: "Tesla", Mileage: 42000},
		AssignedTo: "user-3", Priority: models.PriorityLow,
	},
}

func ids(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		filter      Filter
		wantIDs     []string
		wantApplied []Applied
	}{
		{
			name:        "empty filter keeps everything",
			filter:      Filter{},
			wantIDs:     []string{"RA-8463", "RA-8464", "RA-8465"},
			wantApplied: []Applied{},
		},
		{
			name:        "status equality",
			filter:      Filter{Status: models.JobStatusNew},
			wantIDs:     []string{"RA-8463"},
			wantApplied: []Applied{{"Status", "New"}},
		},
		{
			name:        "vehicle type and location combine",
			filter:      Filter{VehicleType: models.VehicleCar, Location: "stockholm"},
			wantIDs:     []string{"RA-8463", "RA-8465"},
			wantApplied: []Applied{{"Fordonstyp", "Car"}, {"Plats", "stockholm"}},
		},
		{
			name:        "assignee resolved by partial name",
			filter:      Filter{AssignedToName: "erik"},
			wantIDs:     []string{"RA-8464"},
			wantApplied: []Applied{{"Förare", "Erik Eriksson"}},
		},
		{
			name:        "unknown assignee is skipped",
			filter:      Filter{AssignedToName: "Olof"},
			wantIDs:     []string{"RA-8463", "RA-8464", "RA-8465"},
			wantApplied: []Applied{},
		},
		{
			name:        "category substring ignores uncategorised jobs",
			filter:      Filter{Category: "PUNKT"},
			wantIDs:     []string{"RA-8464"},
			wantApplied: []Applied{{"Kategori", "PUNKT"}},
		},
		{
			name:        "priority equality",
			filter:      Filter{Priority: models.PriorityHigh},
			wantIDs:     []string{"RA-8463"},
			wantApplied: []Applied{{"Prioritet", "Hög"}},
		},
		{
			name:        "search text over plate",
			filter:      Filter{SearchText: "tru 789"},
			wantIDs:     []string{"RA-8464"},
			wantApplied: []Applied{{"Fritext", "tru 789"}},
		},
		{
			name:        "search text over customer name",
			filter:      Filter{SearchText: "johan"},
			wantIDs:     []string{"RA-8465"},
			wantApplied: []Applied{{"Fritext", "johan"}},
		},
		{
			name:        "no match",
			filter:      Filter{Status: models.JobStatusCompleted, VehicleType: models.VehicleTruck},
			wantIDs:     []string{},
			wantApplied: []Applied{{"Status", "Completed"}, {"Fordonstyp", "Truck"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(testJobs, testUsers, tt.filter)
			if got := ids(res.Jobs); !equal(got, tt.wantIDs) {
				t.Errorf("jobs: got %v, want %v", got, tt.wantIDs)
			}
			if len(res.Applied) != len(tt.wantApplied) {
				t.Fatalf("applied: got %v, want %v", res.Applied, tt.wantApplied)
			}
			for i := range tt.wantApplied {
				if res.Applied[i] != tt.wantApplied[i] {
					t.Errorf("applied[%d]: got %v, want %v", i, res.Applied[i], tt.wantApplied[i])
				}
			}
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	jobs := append([]models.Job{}, testJobs...)
	Apply(jobs, testUsers, Filter{Status: models.JobStatusCompleted})
	if got := ids(jobs); !equal(got, []string{"RA-8463", "RA-8464", "RA-8465"}) {
		t.Errorf("input slice was modified: %v", got)
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"job id", "ra-8464", []string{"RA-8464"}},
		{"vehicle make", "tesla", []string{"RA-8465"}},
		{"mileage", "42000", []string{"RA-8465"}},
		{"location across jobs", "stockholm", []string{"RA-8463", "RA-8465"}},
		{"status", "in progress", []string{"RA-8464"}},
		{"no match", "helikopter", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Fallback(testJobs, tt.query)
			if got := ids(res.Jobs); !equal(got, tt.wantIDs) {
				t.Errorf("got %v, want %v", got, tt.wantIDs)
			}
			if len(res.Applied) != 1 || res.Applied[0].Label != "Sökterm" || res.Applied[0].Value != tt.query {
				t.Errorf("unexpected applied filters: %v", res.Applied)
			}
		})
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	if !(Filter{}).IsEmpty() {
		t.Error("zero filter should be empty")
	}
	if (Filter{SearchText: "x"}).IsEmpty() {
		t.Error("filter with search text should not be empty")
	}
}
