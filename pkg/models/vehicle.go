package models

// VehicleRecord is the registry entry for a license plate.
type VehicleRecord struct {
	LicensePlate     string `json:"licensePlate"`
	Make             string `json:"make"`
	Model            string `json:"model"`
	VIN              string `json:"vin"`
	InsuranceCompany string `json:"insuranceCompany"`
	Engine           string `json:"engine,omitempty"`
	Fuel             string `json:"fuel,omitempty"`
	Drivetrain       string `json:"drivetrain,omitempty"`
}
