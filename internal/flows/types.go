package flows

import (
	"github.com/kiranshivaraju/rescueassist/internal/analysis"
	"github.com/kiranshivaraju/rescueassist/pkg/jobquery"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

type RouteInput struct {
	StartLocation     string `json:"startLocation" validate:"required" jsonschema:"description=The current location of the tow truck."`
	BreakdownLocation string `json:"breakdownLocation" validate:"required" jsonschema:"description=The location of the vehicle breakdown."`
	Destination       string `json:"destination" validate:"required" jsonschema:"description=The final destination for the vehicle."`
}

type Route struct {
	OptimizedRoute    string `json:"optimizedRoute" jsonschema:"description=Route from the start via the breakdown location to the destination with turn-by-turn directions."`
	EstimatedTime     string `json:"estimatedTime" jsonschema:"description=Estimated travel time for the route."`
	EstimatedDistance string `json:"estimatedDistance" jsonschema:"description=Estimated distance in kilometers."`
}

// Pricing is the tariff applied to a trip, in SEK.
type Pricing struct {
	StartFee  float64 `json:"startFee" validate:"gte=0"`
	CostPerKm float64 `json:"costPerKm" validate:"gte=0"`
}

type TripReportInput struct {
	StartLocation     string `json:"startLocation" validate:"required"`
	BreakdownLocation string `json:"breakdownLocation" validate:"required"`
	Destination       string `json:"destination" validate:"required"`
	// Pricing defaults to the configured tariff when omitted.
	Pricing *Pricing `json:"pricing,omitempty"`
}

type TripCosts struct {
	Deductible float64 `json:"deductible"`
	OtherFees  float64 `json:"otherFees"`
	Total      float64 `json:"total"`
}

type TripReport struct {
	Distance   string    `json:"distance"`
	DistanceKm float64   `json:"distanceKm"`
	Costs      TripCosts `json:"costs"`
	Route      string    `json:"route,omitempty"`
}

type ReceiptInput struct {
	JobID            string        `json:"jobId" validate:"required"`
	CustomerName     string        `json:"customerName" validate:"required"`
	VehicleMake      string        `json:"vehicleMake" validate:"required"`
	VehicleModel     string        `json:"vehicleModel" validate:"required"`
	Destination      string        `json:"destination" validate:"required"`
	DestinationNotes string        `json:"destinationNotes,omitempty"`
	KeysLocation     string        `json:"keysLocation,omitempty"`
	Costs            *models.Costs `json:"costs,omitempty"`
}

// ReceiptInputFromJob builds the receipt input for a job.
func ReceiptInputFromJob(job models.Job) ReceiptInput {
	return ReceiptInput{
		JobID:            job.ID,
		CustomerName:     job.Customer.Name,
		VehicleMake:      job.Vehicle.Make,
		VehicleModel:     job.Vehicle.Model,
		Destination:      job.Destination,
		DestinationNotes: job.DestinationNotes,
		KeysLocation:     job.KeysLocation,
		Costs:            job.Costs,
	}
}

type Receipt struct {
	Message string `json:"message" jsonschema:"description=The message to send to the customer."`
}

type InsuranceReportInput struct {
	Job models.Job `json:"job"`
}

type Report struct {
	Report string `json:"report" jsonschema:"description=The report in markdown format."`
}

type DashboardReportInput struct {
	Jobs  []models.Job  `json:"jobs" validate:"dive"`
	Users []models.User `json:"users" validate:"dive"`
	// Stats is computed from Jobs and Users when omitted.
	Stats *analysis.DashboardStats `json:"stats,omitempty"`
}

// DashboardReport pairs the model's markdown with the figures it was given.
type DashboardReport struct {
	Report string                  `json:"report"`
	Stats  analysis.DashboardStats `json:"stats"`
}

type PhotoInput struct {
	PhotoDataURI string `json:"photoDataUri" validate:"required" jsonschema:"description=A photo of a vehicle as a base64 data URI in the form data:<mimetype>;base64 followed by the encoded data."`
}

type VehicleIdentity struct {
	Make  string `json:"make" jsonschema:"description=The make of the identified vehicle such as Volvo."`
	Model string `json:"model" jsonschema:"description=The model of the identified vehicle such as XC60."`
}

type AudioInput struct {
	AudioDataURI string `json:"audioDataUri" validate:"required" jsonschema:"description=An audio recording as a base64 data URI in the form data:<mimetype>;base64 followed by the encoded data."`
}

type Transcription struct {
	Transcription string `json:"transcription"`
}

type DriverJob struct {
	Location    string             `json:"location" validate:"required"`
	VehicleType models.VehicleType `json:"vehicleType" validate:"required,vehicletype" jsonschema:"enum=Car,enum=Motorcycle,enum=Truck,enum=Van"`
	Position    *models.Position   `json:"position,omitempty"`
}

// DriverCandidate is an available driver offered to the model.
type DriverCandidate struct {
	ID          string             `json:"id" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Position    *models.Position   `json:"position,omitempty"`
	VehicleType models.VehicleType `json:"vehicleType" validate:"required,vehicletype" jsonschema:"enum=Car,enum=Motorcycle,enum=Truck,enum=Van"`
	DistanceKm  *float64           `json:"distanceKm,omitempty"`
}

type SuggestDriverInput struct {
	Job     DriverJob         `json:"job"`
	Drivers []DriverCandidate `json:"drivers" validate:"dive"`
}

type DriverSuggestion struct {
	DriverID string `json:"driverId" jsonschema:"description=The ID of the suggested driver."`
	Reason   string `json:"reason" jsonschema:"description=A brief explanation including estimated time to arrival."`
}

type CategorizeInput struct {
	Description string `json:"description" validate:"required"`
}

type Categorization struct {
	Category        string          `json:"category" jsonschema:"enum=Mekaniskt fel,enum=Olycka,enum=Punktering,enum=Låsöppning,enum=Bränslebrist,enum=Batteriproblem,enum=Annat"`
	Priority        models.Priority `json:"priority" jsonschema:"enum=Hög,enum=Normal,enum=Låg"`
	SuggestedAction string          `json:"suggestedAction" jsonschema:"enum=Bärgning,enum=Starthjälp,enum=Däckbyte,enum=Låsöppning,enum=Bränsleleverans"`
}

type SearchInput struct {
	Query string `json:"query" validate:"required"`
}

// SearchFilters is the structured form of a free-text job search.
type SearchFilters = jobquery.Filter
