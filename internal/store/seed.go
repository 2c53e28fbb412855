package store

import (
	"time"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// DemoUsers returns the dispatcher and drivers used for local development.
func DemoUsers() []models.User {
	return []models.User{
		{ID: "user-1", Name: "Anna Lindqvist", Role: models.RoleDispatcher, Avatar: "/avatars/anna.png"},
		{
			ID: "user-2", Name: "Erik Johansson", Role: models.RoleDriver, Avatar: "/avatars/erik.png",
			Position:        &models.Position{Lat: 59.3293, Lng: 18.0686},
			AssignedVehicle: &models.AssignedVehicle{LicensePlate: "BRG 001", Model: "Scania R500"},
		},
		{
			ID: "user-3", Name: "Sara Nilsson", Role: models.RoleDriver, Avatar: "/avatars/sara.png",
			Position:        &models.Position{Lat: 59.8586, Lng: 17.6389},
			AssignedVehicle: &models.AssignedVehicle{LicensePlate: "BRG 002", Model: "Volkswagen Crafter"},
		},
		{
			ID: "user-4", Name: "Johan Berg", Role: models.RoleDriver, Avatar: "/avatars/johan.png",
			Position:        &models.Position{Lat: 59.6498, Lng: 17.9238},
			AssignedVehicle: &models.AssignedVehicle{LicensePlate: "BRG 003", Model: "Mercedes-Benz Sprinter"},
		},
	}
}

// DemoJobs returns six jobs spread over the last day, relative to now.
func DemoJobs(now time.Time) []models.Job {
	at := func(hoursAgo float64) time.Time {
		return now.Add(-time.Duration(hoursAgo * float64(time.Hour))).UTC().Truncate(time.Second)
	}
	yes, no := true, false

	return []models.Job{
		{
			ID:          "RA-8463",
			Customer:    models.Customer{Name: "Karin Svensson", Phone: "070-123 45 67", Email: "karin.svensson@example.se"},
			Vehicle:     models.Vehicle{Make: "Volvo", Model: "XC60", LicensePlate: "REG 123", Type: models.VehicleCar, Mileage: 84500},
			Location:    "E4, Stockholm",
			Position:    models.Position{Lat: 59.2753, Lng: 17.9036},
			Destination: "Mekonomen Södertälje",
			Description: "Motorstopp på E4 i södergående riktning. Varningsblinkers på.",
			Status:      models.JobStatusNew,
			ReportedAt:  at(0.5),
			Log:         []models.LogEntry{{Event: models.EventJobReported, Timestamp: at(0.5)}},
		},
		{
			ID:          "RA-8464",
			Customer:    models.Customer{Name: "Lars Andersson", Phone: "073-555 12 34"},
			Vehicle:     models.Vehicle{Make: "Audi", Model: "A4", LicensePlate: "AUD 456", Type: models.VehicleCar, Mileage: 121000},
			Location:    "Drottninggatan 5, Uppsala",
			Position:    models.Position{Lat: 59.8580, Lng: 17.6430},
			Destination: "Audi Center Uppsala",
			Description: "Bilen startar inte. Troligen urladdat batteri.",
			Status:      models.JobStatusInProgress,
			ReportedAt:  at(2),
			AssignedTo:  "user-3",
			Category:    "Batteriproblem",
			Priority:    models.PriorityNormal,
			Log: []models.LogEntry{
				{Event: models.EventJobReported, Timestamp: at(2)},
				{Event: models.EventDriverAssigned, Timestamp: at(1.8)},
			},
		},
		{
			ID:          "RA-8465",
			Customer:    models.Customer{Name: "Åkeri Nord AB", Phone: "010-222 33 44"},
			Vehicle:     models.Vehicle{Make: "Scania", Model: "R-series", LicensePlate: "TRU 789", Type: models.VehicleTruck, Mileage: 452000},
			Location:    "Rv70, Enköping",
			Position:    models.Position{Lat: 59.6360, Lng: 17.0780},
			Destination: "Scania Verkstad Västerås",
			Description: "Lastbil med släp har fått punktering på höger framhjul.",
			Status:      models.JobStatusNew,
			ReportedAt:  at(1),
			Log:         []models.LogEntry{{Event: models.EventJobReported, Timestamp: at(1)}},
		},
		{
			ID:               "RA-8466",
			Customer:         models.Customer{Name: "Maria Eriksson", Phone: "076-987 65 43"},
			Vehicle:          models.Vehicle{Make: "Ford", Model: "Transit", LicensePlate: "VAN 101", Type: models.VehicleVan, Mileage: 67000},
			Location:         "Arlanda Airport",
			Position:         models.Position{Lat: 59.6498, Lng: 17.9238},
			Destination:      "Ford Märsta",
			Description:      "Skåpbilen har fått slut på bränsle vid terminal 5.",
			Status:           models.JobStatusCompleted,
			ReportedAt:       at(20),
			AssignedTo:       "user-4",
			Category:         "Bränslebrist",
			Priority:         models.PriorityLow,
			ActionsTaken:     []string{"Bränsleleverans"},
			DriverDiagnosis:  []string{"Tom tank"},
			TMAUsed:          &no,
			DestinationNotes: "Parkerad vid verkstadens infart.",
			KeysLocation:     "Nyckelbox vid receptionen",
			InsuranceCompany: "Länsförsäkringar",
			Costs:            &models.Costs{Deductible: 500, OtherFees: 450, Total: 950, PaidOnSite: true},
			Log: []models.LogEntry{
				{Event: models.EventJobReported, Timestamp: at(20)},
				{Event: models.EventDriverAssigned, Timestamp: at(19.8)},
				{Event: models.EventArrivedAtSite, Timestamp: at(19.2)},
				{Event: models.EventArrivedAtDestination, Timestamp: at(18.5)},
				{Event: models.EventJobCompleted, Timestamp: at(18.4)},
			},
		},
		{
			ID:               "RA-8467",
			Customer:         models.Customer{Name: "Oskar Lund", Phone: "072-111 22 33"},
			Vehicle:          models.Vehicle{Make: "Kawasaki", Model: "Ninja 400", LicensePlate: "MC 202", Type: models.VehicleMotorcycle, Mileage: 15400},
			Location:         "Gamla Uppsala",
			Position:         models.Position{Lat: 59.8980, Lng: 17.6320},
			Destination:      "Bilsport & MC Uppsala",
			Description:      "Motorcykeln vurpade i låg fart. Föraren oskadd.",
			Status:           models.JobStatusCompleted,
			ReportedAt:       at(26),
			AssignedTo:       "user-3",
			Category:         "Olycka",
			Priority:         models.PriorityHigh,
			ActionsTaken:     []string{"Bärgning"},
			DriverDiagnosis:  []string{"Skadad framgaffel"},
			TMAUsed:          &yes,
			DestinationNotes: "Ställd inomhus i verkstaden.",
			KeysLocation:     "Lämnade till verkstadschefen",
			InsuranceCompany: "Bilsport & MC",
			Costs:            &models.Costs{Deductible: 500, OtherFees: 300, Total: 800},
			Log: []models.LogEntry{
				{Event: models.EventJobReported, Timestamp: at(26)},
				{Event: models.EventDriverAssigned, Timestamp: at(25.9)},
				{Event: models.EventArrivedAtSite, Timestamp: at(25.4)},
				{Event: models.EventArrivedAtDestination, Timestamp: at(24.9)},
				{Event: models.EventJobCompleted, Timestamp: at(24.8)},
			},
		},
		{
			ID:          "RA-8468",
			Customer:    models.Customer{Name: "Elin Holm", Phone: "070-444 55 66", Email: "elin.holm@example.se"},
			Vehicle:     models.Vehicle{Make: "Tesla", Model: "Model Y", LicensePlate: "TES 303", Type: models.VehicleCar, Mileage: 32000},
			Location:    "Gränby Centrum, Uppsala",
			Position:    models.Position{Lat: 59.8770, Lng: 17.6740},
			Destination: "Tesla Service Uppsala",
			Description: "Låst ute. Nyckelkortet ligger kvar i bilen.",
			Status:      models.JobStatusNew,
			ReportedAt:  at(0.2),
			Log:         []models.LogEntry{{Event: models.EventJobReported, Timestamp: at(0.2)}},
		},
	}
}
