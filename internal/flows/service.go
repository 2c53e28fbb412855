package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/analysis"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/pkg/geo"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNoEligibleDriver is returned by SuggestDriver when no driver in the input
// can take the job.
var ErrNoEligibleDriver = errors.New("no eligible driver")

// Service runs flows with typed inputs and outputs.
type Service struct {
	invoker  *ai.Invoker
	registry *schema.Registry
	pricing  Pricing
	handlers map[string]runFunc
}

type runFunc func(ctx context.Context, in any) (any, error)

// NewService creates a Service on top of invoker. pricing is the tariff used
// by trip reports that carry none.
func NewService(invoker *ai.Invoker, pricing Pricing) *Service {
	s := &Service{
		invoker:  invoker,
		registry: invoker.Registry(),
		pricing:  pricing,
	}
	s.handlers = map[string]runFunc{
		OptimizeRoute:           handler(s.OptimizeRoute),
		GenerateTripReport:      handler(s.GenerateTripReport),
		GenerateReceiptMessage:  handler(s.GenerateReceiptMessage),
		GenerateInsuranceReport: handler(s.GenerateInsuranceReport),
		GenerateDashboardReport: handler(s.GenerateDashboardReport),
		IdentifyVehicle:         handler(s.IdentifyVehicle),
		TranscribeAudio:         handler(s.TranscribeAudio),
		SuggestDriver:           handler(s.SuggestDriver),
		CategorizeJob:           handler(s.CategorizeJob),
		ExtractSearchFilters:    handler(s.ExtractSearchFilters),
	}
	return s
}

func handler[In, Out any](fn func(context.Context, In) (Out, error)) runFunc {
	return func(ctx context.Context, in any) (any, error) {
		return fn(ctx, *in.(*In))
	}
}

func (s *Service) Registry() *schema.Registry { return s.registry }

// Run decodes raw JSON input for the named flow, runs the flow and returns its
// typed output.
func (s *Service) Run(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	spec, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	run, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownFlow, name)
	}
	in, err := spec.DecodeInput(raw)
	if err != nil {
		return nil, err
	}
	return run(ctx, in)
}

func invoke[Out any](ctx context.Context, s *Service, flow string, in any) (Out, error) {
	var zero Out
	raw, err := s.invoker.Invoke(ctx, ai.InvocationRequest{Flow: flow, Input: in})
	if err != nil {
		return zero, err
	}
	spec, err := s.registry.Get(flow)
	if err != nil {
		return zero, err
	}
	return schema.DecodeOutput[Out](spec, raw)
}

func (s *Service) OptimizeRoute(ctx context.Context, in RouteInput) (Route, error) {
	return invoke[Route](ctx, s, OptimizeRoute, in)
}

// GenerateTripReport asks optimizeRoute for the distance and prices it.
// A distance without a number is an OutputMismatchError.
func (s *Service) GenerateTripReport(ctx context.Context, in TripReportInput) (TripReport, error) {
	spec, err := s.registry.Get(GenerateTripReport)
	if err != nil {
		return TripReport{}, err
	}
	if err := spec.ValidateInput(in); err != nil {
		return TripReport{}, err
	}

	route, err := s.OptimizeRoute(ctx, RouteInput{
		StartLocation:     in.StartLocation,
		BreakdownLocation: in.BreakdownLocation,
		Destination:       in.Destination,
	})
	if err != nil {
		return TripReport{}, err
	}

	km, err := ParseDistanceKm(route.EstimatedDistance)
	if err != nil {
		return TripReport{}, &schema.OutputMismatchError{
			Flow:    GenerateTripReport,
			Details: []string{err.Error()},
			Raw:     route.EstimatedDistance,
		}
	}

	pricing := s.pricing
	if in.Pricing != nil {
		pricing = *in.Pricing
	}
	return TripReport{
		Distance:   route.EstimatedDistance,
		DistanceKm: km,
		Costs:      CalculateCosts(km, pricing),
		Route:      route.OptimizedRoute,
	}, nil
}

var reNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseDistanceKm returns the first number in s, accepting either a comma or a
// dot as decimal separator: "38,5 km" is 38.5.
func ParseDistanceKm(s string) (float64, error) {
	m := reNumber.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("estimated distance %q contains no number", s)
	}
	return strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
}

// CalculateCosts prices a trip of km kilometers. Amounts are rounded to whole
// SEK, halves away from zero.
func CalculateCosts(km float64, p Pricing) TripCosts {
	otherFees := math.Round(km * p.CostPerKm)
	return TripCosts{
		Deductible: p.StartFee,
		OtherFees:  otherFees,
		Total:      math.Round(p.StartFee + otherFees),
	}
}

func (s *Service) GenerateReceiptMessage(ctx context.Context, in ReceiptInput) (Receipt, error) {
	return invoke[Receipt](ctx, s, GenerateReceiptMessage, in)
}

func (s *Service) GenerateInsuranceReport(ctx context.Context, in InsuranceReportInput) (Report, error) {
	return invoke[Report](ctx, s, GenerateInsuranceReport, in)
}

// GenerateDashboardReport computes the dashboard statistics, unless the caller
// supplied them, and has the model write the report around them.
func (s *Service) GenerateDashboardReport(ctx context.Context, in DashboardReportInput) (DashboardReport, error) {
	if in.Stats == nil {
		stats := analysis.Summarize(in.Jobs, in.Users, analysis.DefaultTopN)
		in.Stats = &stats
	}
	out, err := invoke[Report](ctx, s, GenerateDashboardReport, in)
	if err != nil {
		return DashboardReport{}, err
	}
	return DashboardReport{Report: out.Report, Stats: *in.Stats}, nil
}

func (s *Service) IdentifyVehicle(ctx context.Context, in PhotoInput) (VehicleIdentity, error) {
	return invoke[VehicleIdentity](ctx, s, IdentifyVehicle, in)
}

func (s *Service) TranscribeAudio(ctx context.Context, in AudioInput) (Transcription, error) {
	return invoke[Transcription](ctx, s, TranscribeAudio, in)
}

// SuggestDriver picks a driver for a job. Inputs with no eligible driver are
// rejected before the model is called, and a model answer naming an unknown
// or ineligible driver is an OutputMismatchError.
func (s *Service) SuggestDriver(ctx context.Context, in SuggestDriverInput) (DriverSuggestion, error) {
	if !hasEligible(in) {
		return DriverSuggestion{}, &schema.ValidationError{
			Flow: SuggestDriver, Field: "drivers", Rule: "eligible", Err: ErrNoEligibleDriver,
		}
	}
	in.Drivers = withDistances(in.Job, in.Drivers)

	out, err := invoke[DriverSuggestion](ctx, s, SuggestDriver, in)
	if err != nil {
		return DriverSuggestion{}, err
	}

	for _, d := range in.Drivers {
		if d.ID != out.DriverID {
			continue
		}
		if !eligible(in.Job, d) {
			return DriverSuggestion{}, &schema.OutputMismatchError{
				Flow:    SuggestDriver,
				Details: []string{fmt.Sprintf("driver %s operates a %s, job needs a %s", d.ID, d.VehicleType, models.VehicleTruck)},
				Raw:     out.DriverID,
			}
		}
		return out, nil
	}
	return DriverSuggestion{}, &schema.OutputMismatchError{
		Flow:    SuggestDriver,
		Details: []string{fmt.Sprintf("driver %q is not among the candidates", out.DriverID)},
		Raw:     out.DriverID,
	}
}

func eligible(job DriverJob, d DriverCandidate) bool {
	return job.VehicleType != models.VehicleTruck || d.VehicleType == models.VehicleTruck
}

func hasEligible(in SuggestDriverInput) bool {
	for _, d := range in.Drivers {
		if eligible(in.Job, d) {
			return true
		}
	}
	return false
}

// withDistances returns a copy of drivers with DistanceKm filled in where both
// the job and the driver have a position.
func withDistances(job DriverJob, drivers []DriverCandidate) []DriverCandidate {
	out := make([]DriverCandidate, len(drivers))
	copy(out, drivers)
	if job.Position == nil {
		return out
	}
	for i := range out {
		if out[i].Position == nil || out[i].DistanceKm != nil {
			continue
		}
		km := math.Round(geo.DistanceKm(*job.Position, *out[i].Position)*10) / 10
		out[i].DistanceKm = &km
	}
	return out
}

// DriverCandidates lists every driver in users with the tow vehicle class
// they operate.
func DriverCandidates(users []models.User) []DriverCandidate {
	out := []DriverCandidate{}
	for _, u := range users {
		if u.Role != models.RoleDriver {
			continue
		}
		out = append(out, DriverCandidate{
			ID:          u.ID,
			Name:        u.Name,
			Position:    u.Position,
			VehicleType: u.TowVehicleType(),
		})
	}
	return out
}

func (s *Service) CategorizeJob(ctx context.Context, in CategorizeInput) (Categorization, error) {
	return invoke[Categorization](ctx, s, CategorizeJob, in)
}

// ExtractSearchFilters turns a free-text query into filters. Blank fields are
// dropped and the location is title-cased.
func (s *Service) ExtractSearchFilters(ctx context.Context, in SearchInput) (SearchFilters, error) {
	f, err := invoke[SearchFilters](ctx, s, ExtractSearchFilters, in)
	if err != nil {
		return SearchFilters{}, err
	}
	f.Location = titleCase(strings.TrimSpace(f.Location))
	f.AssignedToName = strings.TrimSpace(f.AssignedToName)
	f.Category = strings.TrimSpace(f.Category)
	f.SearchText = strings.TrimSpace(f.SearchText)
	return f, nil
}

func titleCase(s string) string {
	return cases.Title(language.Swedish).String(s)
}
