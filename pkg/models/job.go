package models

import "time"

type JobStatus string

const (
	JobStatusNew        JobStatus = "New"
	JobStatusInProgress JobStatus = "In Progress"
	JobStatusCompleted  JobStatus = "Completed"
)

type VehicleType string

const (
	VehicleCar        VehicleType = "Car"
	VehicleMotorcycle VehicleType = "Motorcycle"
	VehicleTruck      VehicleType = "Truck"
	VehicleVan        VehicleType = "Van"
)

type Priority string

const (
	PriorityHigh   Priority = "Hög"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Låg"
)

// Job categories and actions offered to dispatchers.
var (
	JobCategories = []string{"Mekaniskt fel", "Olycka", "Punktering", "Låsöppning", "Bränslebrist", "Batteriproblem", "Annat"}
	JobActions    = []string{"Bärgning", "Starthjälp", "Däckbyte", "Låsöppning", "Bränsleleverans"}
)

// Log events appended to a job's logbook.
const (
	EventJobReported          = "Job Reported"
	EventDriverAssigned       = "Driver Assigned"
	EventArrivedAtSite        = "Arrived at Site"
	EventArrivedAtDestination = "Arrived at Destination"
	EventJobCompleted         = "Job Completed"
)

// Job is a single towing or roadside assistance assignment.
type Job struct {
	ID               string     `json:"id" validate:"required"`
	Customer         Customer   `json:"customer"`
	Vehicle          Vehicle    `json:"vehicle"`
	Location         string     `json:"location" validate:"required"`
	Position         Position   `json:"position"`
	Destination      string     `json:"destination" validate:"required"`
	Description      string     `json:"description" validate:"required"`
	Status           JobStatus  `json:"status" validate:"required,jobstatus" jsonschema:"enum=New,enum=In Progress,enum=Completed"`
	ReportedAt       time.Time  `json:"reportedAt" validate:"required"`
	AssignedTo       string     `json:"assignedTo,omitempty"`
	Category         string     `json:"category,omitempty"`
	Priority         Priority   `json:"priority,omitempty" validate:"omitempty,priority" jsonschema:"enum=Hög,enum=Normal,enum=Låg"`
	ActionsTaken     []string   `json:"actionsTaken,omitempty"`
	DriverDiagnosis  []string   `json:"driverDiagnosis,omitempty"`
	TMAUsed          *bool      `json:"tmaUsed,omitempty"`
	DestinationNotes string     `json:"destinationNotes,omitempty"`
	KeysLocation     string     `json:"keysLocation,omitempty"`
	InsuranceCompany string     `json:"insuranceCompany,omitempty"`
	Log              []LogEntry `json:"log,omitempty" validate:"dive"`
	Costs            *Costs     `json:"costs,omitempty"`
}

type Customer struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email,omitempty"`
}

type Vehicle struct {
	Make         string      `json:"make" validate:"required"`
	Model        string      `json:"model" validate:"required"`
	LicensePlate string      `json:"licensePlate" validate:"required"`
	Type         VehicleType `json:"type" validate:"required,vehicletype" jsonschema:"enum=Car,enum=Motorcycle,enum=Truck,enum=Van"`
	Mileage      int         `json:"mileage" validate:"gte=0"`
	VIN          string      `json:"vin,omitempty"`
}

type Position struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Costs is the billed breakdown of a job in SEK.
type Costs struct {
	Deductible float64 `json:"deductible"`
	OtherFees  float64 `json:"otherFees"`
	Total      float64 `json:"total"`
	PaidOnSite bool    `json:"paidOnSite"`
}

type LogEntry struct {
	Event     string    `json:"event" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidJobStatus reports whether s is a known job status.
func ValidJobStatus(s string) bool {
	switch JobStatus(s) {
	case JobStatusNew, JobStatusInProgress, JobStatusCompleted:
		return true
	}
	return false
}

// ValidVehicleType reports whether s is a known vehicle type.
func ValidVehicleType(s string) bool {
	switch VehicleType(s) {
	case VehicleCar, VehicleMotorcycle, VehicleTruck, VehicleVan:
		return true
	}
	return false
}

// ValidPriority reports whether s is a known priority level.
func ValidPriority(s string) bool {
	switch Priority(s) {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}
