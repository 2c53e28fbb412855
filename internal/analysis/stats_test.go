package analysis

import (
	"strings"
	"testing"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

func completed(id, assignee, location string, diag, actions []string, costs *models.Costs) models.Job {
	return models.Job{
		ID:              id,
		Status:          models.JobStatusCompleted,
		AssignedTo:      assignee,
		Location:        location,
		DriverDiagnosis: diag,
		ActionsTaken:    actions,
		Costs:           costs,
	}
}

var testUsers = []models.User{
	{ID: "user-1", Name: "Anna Andersson", Role: models.RoleDispatcher},
	{ID: "user-2", Name: "Erik Eriksson", Role: models.RoleDriver},
	{ID: "user-3", Name: "Sara Svensson", Role: models.RoleDriver},
}

// --- NormalizeKey ---

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Batteri Urladdat", "batteri urladdat"},
		{"collapses whitespace", "E4,   Södertälje", "e4, södertälje"},
		{"trims", "  Arlanda\t", "arlanda"},
		{"keeps unicode", "ÖVERHETTAD MOTOR", "överhettad motor"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.input); got != tt.expected {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// --- Summarize ---

func TestSummarize_EmptyInput(t *testing.T) {
	stats := Summarize(nil, nil, 0)
	if stats.CompletedJobs != 0 {
		t.Errorf("expected 0 completed jobs, got %d", stats.CompletedJobs)
	}
	if stats.TopDiagnoses == nil || stats.TopActions == nil || stats.TopLocations == nil || stats.TopDrivers == nil {
		t.Error("rankings must be empty slices, not nil")
	}
	if stats.Revenue.AveragePerJob != 0 {
		t.Errorf("expected zero average, got %v", stats.Revenue.AveragePerJob)
	}
}

func TestSummarize_IgnoresOpenJobs(t *testing.T) {
	jobs := []models.Job{
		completed("RA-1", "user-2", "Kista", nil, nil, nil),
		{ID: "RA-2", Status: models.JobStatusNew, AssignedTo: "user-3", Location: "Kista"},
		{ID: "RA-3", Status: models.JobStatusInProgress, AssignedTo: "user-3", Location: "Kista"},
	}
	stats := Summarize(jobs, testUsers, 3)
	if stats.CompletedJobs != 1 {
		t.Fatalf("expected 1 completed job, got %d", stats.CompletedJobs)
	}
	if len(stats.TopDrivers) != 1 || stats.TopDrivers[0].Name != "Erik Eriksson" {
		t.Errorf("unexpected top drivers: %+v", stats.TopDrivers)
	}
}

func TestSummarize_Revenue(t *testing.T) {
	jobs := []models.Job{
		completed("RA-1", "user-2", "Kista", nil, nil, &models.Costs{Deductible: 500, OtherFees: 963, Total: 1463, PaidOnSite: true}),
		completed("RA-2", "user-2", "Kista", nil, nil, &models.Costs{Deductible: 500, OtherFees: 250, Total: 750}),
		completed("RA-3", "user-3", "Solna", nil, nil, nil),
	}
	rev := Summarize(jobs, testUsers, 3).Revenue

	if rev.Total != 2213 || rev.Deductibles != 1000 || rev.OtherFees != 1213 {
		t.Errorf("unexpected totals: %+v", rev)
	}
	if rev.BilledJobs != 2 || rev.PaidOnSite != 1 {
		t.Errorf("unexpected counts: %+v", rev)
	}
	if rev.AveragePerJob != 1106.5 {
		t.Errorf("expected average 1106.5, got %v", rev.AveragePerJob)
	}
}

func TestSummarize_RankingGroupsAndOrders(t *testing.T) {
	jobs := []models.Job{
		completed("RA-1", "user-2", "E4, Södertälje", []string{"Batteri urladdat", "Punktering"}, []string{"Starthjälp"}, nil),
		completed("RA-2", "user-2", "e4,  södertälje", []string{"batteri  urladdat"}, []string{"Starthjälp", "Bärgning"}, nil),
		completed("RA-3", "user-3", "Arlanda", []string{"Motorstopp"}, []string{"Bärgning"}, nil),
		completed("RA-4", "user-3", "Kista", []string{"Punktering"}, []string{"Däckbyte"}, nil),
		completed("RA-5", "user-3", "Solna", []string{"Växellåda"}, nil, nil),
	}
	stats := Summarize(jobs, testUsers, 3)

	wantDiag := []Count{{"Batteri urladdat", 2}, {"Punktering", 2}, {"Motorstopp", 1}}
	assertCounts(t, "diagnoses", stats.TopDiagnoses, wantDiag)

	wantActions := []Count{{"Bärgning", 2}, {"Starthjälp", 2}, {"Däckbyte", 1}}
	assertCounts(t, "actions", stats.TopActions, wantActions)

	wantLoc := []Count{{"E4, Södertälje", 2}, {"Arlanda", 1}, {"Kista", 1}}
	assertCounts(t, "locations", stats.TopLocations, wantLoc)
}

func TestSummarize_TopDriverMajority(t *testing.T) {
	jobs := []models.Job{
		completed("RA-1", "user-2", "Kista", nil, nil, nil),
		completed("RA-2", "user-3", "Kista", nil, nil, nil),
		completed("RA-3", "user-3", "Kista", nil, nil, nil),
		completed("RA-4", "", "Kista", nil, nil, nil),
	}
	stats := Summarize(jobs, testUsers, 3)
	if len(stats.TopDrivers) != 1 {
		t.Fatalf("expected a single top driver, got %+v", stats.TopDrivers)
	}
	got := stats.TopDrivers[0]
	if got.ID != "user-3" || got.Name != "Sara Svensson" || got.Completed != 2 {
		t.Errorf("unexpected top driver: %+v", got)
	}
}

func TestSummarize_TiedTopDriversAllReported(t *testing.T) {
	jobs := []models.Job{
		completed("RA-1", "user-3", "Kista", nil, nil, nil),
		completed("RA-2", "user-2", "Kista", nil, nil, nil),
		completed("RA-3", "user-9", "Kista", nil, nil, nil),
	}
	stats := Summarize(jobs, testUsers, 3)
	if len(stats.TopDrivers) != 3 {
		t.Fatalf("expected 3 tied drivers, got %+v", stats.TopDrivers)
	}
	names := []string{stats.TopDrivers[0].Name, stats.TopDrivers[1].Name, stats.TopDrivers[2].Name}
	if strings.Join(names, ",") != "Erik Eriksson,Sara Svensson,user-9" {
		t.Errorf("unexpected tied drivers: %v", names)
	}
}

func TestSummarize_DefaultTopN(t *testing.T) {
	jobs := []models.Job{
		completed("RA-1", "", "A", nil, nil, nil),
		completed("RA-2", "", "B", nil, nil, nil),
		completed("RA-3", "", "C", nil, nil, nil),
		completed("RA-4", "", "D", nil, nil, nil),
	}
	if got := len(Summarize(jobs, nil, 0).TopLocations); got != DefaultTopN {
		t.Errorf("expected %d locations, got %d", DefaultTopN, got)
	}
	if got := len(Summarize(jobs, nil, 10).TopLocations); got != 4 {
		t.Errorf("expected 4 locations, got %d", got)
	}
}

func TestSummarize_LongValueTruncated(t *testing.T) {
	long := strings.Repeat("å", 300)
	stats := Summarize([]models.Job{completed("RA-1", "", long, nil, nil, nil)}, nil, 3)
	if len(stats.TopLocations[0].Value) > 200 {
		t.Errorf("value should be truncated to 200 bytes, got %d", len(stats.TopLocations[0].Value))
	}
}

// --- truncateString ---

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxBytes int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated ascii", "hello world", 5, "hello"},
		{"does not split multibyte rune", "hej då", 5, "hej d"},
		{"backs off to rune start", "åäö", 3, "å"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxBytes); got != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxBytes, got, tt.expected)
			}
		})
	}
}

func assertCounts(t *testing.T, label string, got, want []Count) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %v, got %v", label, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d]: expected %+v, got %+v", label, i, want[i], got[i])
		}
	}
}
