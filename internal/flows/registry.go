// Package flows defines the RescueAssist flows and runs them through the
// model invoker.
package flows

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/kiranshivaraju/rescueassist/internal/prompt"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/internal/vehicles"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

//go:embed prompts/*.prompt
var promptFS embed.FS

// Flow names.
const (
	OptimizeRoute           = "optimizeRoute"
	GenerateTripReport      = "generateTripReport"
	GenerateReceiptMessage  = "generateReceiptMessage"
	GenerateInsuranceReport = "generateInsuranceReport"
	GenerateDashboardReport = "generateDashboardReport"
	IdentifyVehicle         = "identifyVehicle"
	TranscribeAudio         = "transcribeAudio"
	SuggestDriver           = "suggestDriver"
	CategorizeJob           = "categorizeJob"
	ExtractSearchFilters    = "extractSearchFilters"
)

// Names lists every flow in registration order.
var Names = []string{
	OptimizeRoute, GenerateTripReport, GenerateReceiptMessage, GenerateInsuranceReport,
	GenerateDashboardReport, IdentifyVehicle, TranscribeAudio, SuggestDriver,
	CategorizeJob, ExtractSearchFilters,
}

var exampleJob = models.Job{
	ID:              "RA-8462",
	Customer:        models.Customer{Name: "Anna Andersson", Phone: "070-123 45 67"},
	Vehicle:         models.Vehicle{Make: "Volvo", Model: "XC60", LicensePlate: "REG 123", Type: models.VehicleCar, Mileage: 45000},
	Location:        "E4, Södertälje",
	Position:        models.Position{Lat: 59.1955, Lng: 17.6253},
	Destination:     "Bilverkstaden, Liljeholmen",
	Description:     "Motorstopp efter en kollision i vänster fil.",
	Status:          models.JobStatusCompleted,
	ReportedAt:      time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC),
	AssignedTo:      "user-2",
	ActionsTaken:    []string{"Bärgning"},
	DriverDiagnosis: []string{"Skadad kylare"},
	Costs:           &models.Costs{Deductible: 1500, OtherFees: 963, Total: 2463},
}

var exampleDriver = models.User{
	ID:       "user-2",
	Name:     "Erik Eriksson",
	Role:     models.RoleDriver,
	Position: &models.Position{Lat: 59.2, Lng: 17.6},
}

// NewRegistry builds the registry of all flows from the embedded prompts.
func NewRegistry() (*schema.Registry, error) {
	defs, err := prompt.LoadDir(promptFS, "prompts")
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}
	for _, name := range Names {
		if name == GenerateTripReport {
			continue
		}
		if _, ok := defs[name]; !ok {
			return nil, fmt.Errorf("missing prompt for flow %s", name)
		}
	}

	var errs []error
	define := func(s *schema.FlowSpec, err error) *schema.FlowSpec {
		if err != nil {
			errs = append(errs, err)
		}
		return s
	}

	specs := []*schema.FlowSpec{
		define(schema.Define[RouteInput, Route](OptimizeRoute,
			schema.WithPrompt(defs[OptimizeRoute]),
			schema.WithCache(),
			schema.WithExample(RouteInput{StartLocation: "Kungens Kurva", BreakdownLocation: "E4, Södertälje", Destination: "Bilverkstaden, Liljeholmen"}),
		)),
		define(schema.Define[TripReportInput, TripReport](GenerateTripReport,
			schema.WithDescription("Estimates trip distance with optimizeRoute and prices it with the start fee and cost per kilometer."),
			schema.WithExample(TripReportInput{StartLocation: "Kungens Kurva", BreakdownLocation: "E4, Södertälje", Destination: "Bilverkstaden, Liljeholmen"}),
		)),
		define(schema.Define[ReceiptInput, Receipt](GenerateReceiptMessage,
			schema.WithPrompt(defs[GenerateReceiptMessage]),
			schema.WithExample(ReceiptInput{JobID: "RA-8465", CustomerName: "Johan Berg", VehicleMake: "Tesla", VehicleModel: "Model Y", Destination: "Tesla Service, Täby", KeysLocation: "Nyckelinkast"}),
		)),
		define(schema.Define[InsuranceReportInput, Report](GenerateInsuranceReport,
			schema.WithPrompt(defs[GenerateInsuranceReport]),
			schema.WithTools(vehicles.Tool()),
			schema.WithExample(InsuranceReportInput{Job: exampleJob}),
		)),
		define(schema.Define[DashboardReportInput, Report](GenerateDashboardReport,
			schema.WithPrompt(defs[GenerateDashboardReport]),
			schema.WithExample(DashboardReportInput{Jobs: []models.Job{exampleJob}, Users: []models.User{exampleDriver}}),
		)),
		define(schema.Define[PhotoInput, VehicleIdentity](IdentifyVehicle,
			schema.WithPrompt(defs[IdentifyVehicle]),
			schema.WithExample(PhotoInput{PhotoDataURI: "data:image/jpeg;base64,/9j/4AAQ"}),
		)),
		define(schema.Define[AudioInput, Transcription](TranscribeAudio,
			schema.WithPrompt(defs[TranscribeAudio]),
			schema.WithExample(AudioInput{AudioDataURI: "data:audio/webm;base64,GkXfow=="}),
		)),
		define(schema.Define[SuggestDriverInput, DriverSuggestion](SuggestDriver,
			schema.WithPrompt(defs[SuggestDriver]),
			schema.WithExample(SuggestDriverInput{
				Job: DriverJob{Location: "E4, Södertälje", VehicleType: models.VehicleTruck},
				Drivers: []DriverCandidate{
					{ID: "user-2", Name: "Erik Eriksson", VehicleType: models.VehicleTruck, Position: &models.Position{Lat: 59.2, Lng: 17.6}},
					{ID: "user-3", Name: "Sara Svensson", VehicleType: models.VehicleCar},
				},
			}),
		)),
		define(schema.Define[CategorizeInput, Categorization](CategorizeJob,
			schema.WithPrompt(defs[CategorizeJob]),
			schema.WithCache(),
			schema.WithExample(CategorizeInput{Description: "Bilen har fått punktering på E4:an och står i vägrenen."}),
		)),
		define(schema.Define[SearchInput, SearchFilters](ExtractSearchFilters,
			schema.WithPrompt(defs[ExtractSearchFilters]),
			schema.WithCache(),
			schema.WithExample(SearchInput{Query: "visa alla nya jobb för lastbilar i stockholm"}),
		)),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return schema.NewRegistry(specs...)
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry() *schema.Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}
