package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTowVehicleType(t *testing.T) {
	tests := []struct {
		name string
		user User
		want VehicleType
	}{
		{"no vehicle", User{ID: "u1"}, VehicleCar},
		{"scania", User{AssignedVehicle: &AssignedVehicle{Model: "Scania R500 Bärgare"}}, VehicleTruck},
		{"volvo fh", User{AssignedVehicle: &AssignedVehicle{Model: "Volvo FH16"}}, VehicleTruck},
		{"volvo fl is light", User{AssignedVehicle: &AssignedVehicle{Model: "Volvo FL"}}, VehicleCar},
		{"pickup", User{AssignedVehicle: &AssignedVehicle{Model: "VW Crafter"}}, VehicleCar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.TowVehicleType())
		})
	}
}

func TestEnumValidators(t *testing.T) {
	assert.True(t, ValidJobStatus("In Progress"))
	assert.False(t, ValidJobStatus("in progress"))
	assert.True(t, ValidVehicleType("Truck"))
	assert.False(t, ValidVehicleType("Bus"))
	assert.True(t, ValidPriority("Hög"))
	assert.False(t, ValidPriority("High"))
	assert.True(t, ValidRole("Driver"))
	assert.False(t, ValidRole(""))
}

func TestGenerateRequest_TextAndAttachments(t *testing.T) {
	req := GenerateRequest{Parts: []Part{
		{Text: "Foto: "},
		{Media: &Media{MediaType: "image/png", Data: []byte{1, 2}}},
		{Text: "\nSvara kort."},
	}}
	assert.Equal(t, "Foto: \nSvara kort.", req.Text())
	att := req.Attachments()
	if assert.Len(t, att, 1) {
		assert.Equal(t, "image/png", att[0].MediaType)
	}
}
