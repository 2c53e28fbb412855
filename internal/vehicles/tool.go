package vehicles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

const ToolName = "getVehicleInfoByLicensePlate"

// ToolInput is the argument object the model sends.
type ToolInput struct {
	LicensePlate string `json:"licensePlate" jsonschema:"description=The license plate of the vehicle such as REG 123"`
}

// ToolResult is returned to the model. A miss is Found=false with no other
// fields, never an error.
type ToolResult struct {
	Found bool `json:"found"`
	*models.VehicleRecord
}

var toolInputSchema = func() json.RawMessage {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	b, err := json.Marshal(r.Reflect(&ToolInput{}))
	if err != nil {
		panic(fmt.Sprintf("vehicles: reflecting tool schema: %v", err))
	}
	return b
}()

// Tool returns the model-callable vehicle lookup.
func Tool() models.Tool {
	return models.Tool{
		Name:        ToolName,
		Description: "Returns make, model, VIN and insurance company for a given license plate. Returns found=false when the plate is not registered.",
		InputSchema: toolInputSchema,
		Handler:     handle,
	}
}

func handle(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ToolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decoding %s input: %w", ToolName, err)
	}

	rec, ok := Lookup(in.LicensePlate)
	slog.Debug("vehicle lookup", "plate", in.LicensePlate, "found", ok)

	res := ToolResult{Found: ok}
	if ok {
		res.VehicleRecord = &rec
	}
	return json.Marshal(res)
}
