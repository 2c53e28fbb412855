package models

import "strings"

type Role string

const (
	RoleDispatcher Role = "Dispatcher"
	RoleDriver     Role = "Driver"
)

// User is a dispatcher or a tow truck driver.
type User struct {
	ID              string           `json:"id" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Role            Role             `json:"role" validate:"required,role" jsonschema:"enum=Dispatcher,enum=Driver"`
	Avatar          string           `json:"avatar"`
	Position        *Position        `json:"position,omitempty"`
	AssignedVehicle *AssignedVehicle `json:"assignedVehicle,omitempty"`
}

// AssignedVehicle is the tow truck a driver operates.
type AssignedVehicle struct {
	LicensePlate string `json:"licensePlate" validate:"required"`
	Model        string `json:"model" validate:"required"`
}

// heavyTowModels identifies tow trucks able to recover heavy vehicles.
var heavyTowModels = []string{"Scania", "Volvo FH"}

// TowVehicleType returns the class of vehicle this driver can recover.
// Drivers of heavy tow trucks handle Truck jobs; everyone else is treated as Car.
func (u User) TowVehicleType() VehicleType {
	if u.AssignedVehicle == nil {
		return VehicleCar
	}
	for _, m := range heavyTowModels {
		if strings.Contains(u.AssignedVehicle.Model, m) {
			return VehicleTruck
		}
	}
	return VehicleCar
}

// ValidRole reports whether s is a known user role.
func ValidRole(s string) bool {
	return Role(s) == RoleDispatcher || Role(s) == RoleDriver
}
