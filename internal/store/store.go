package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the data access interface. All job and user reads and writes go through here.
type Store interface {
	Ping(ctx context.Context) error

	ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, opts ...JobUpdateOption) (*models.Job, error)
	AppendJobLog(ctx context.Context, id string, event string) (*models.Job, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Status     models.JobStatus
	AssignedTo string
}

func (f JobFilter) matches(j *models.Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.AssignedTo != "" && j.AssignedTo != f.AssignedTo {
		return false
	}
	return true
}

type jobUpdateParams struct {
	Status           *models.JobStatus
	AssignedTo       *string
	Costs            *models.Costs
	DestinationNotes *string
	KeysLocation     *string
	Category         *string
	Priority         *models.Priority
	ActionsTaken     []string
	DriverDiagnosis  []string
	TMAUsed          *bool
}

type JobUpdateOption func(*jobUpdateParams)

func WithStatus(s models.JobStatus) JobUpdateOption {
	return func(p *jobUpdateParams) { p.Status = &s }
}

func WithAssignee(userID string) JobUpdateOption {
	return func(p *jobUpdateParams) { p.AssignedTo = &userID }
}

func WithCosts(c models.Costs) JobUpdateOption {
	return func(p *jobUpdateParams) { p.Costs = &c }
}

func WithDestinationNotes(notes string) JobUpdateOption {
	return func(p *jobUpdateParams) { p.DestinationNotes = &notes }
}

func WithKeysLocation(location string) JobUpdateOption {
	return func(p *jobUpdateParams) { p.KeysLocation = &location }
}

func WithCategorization(category string, priority models.Priority) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Category = &category
		p.Priority = &priority
	}
}

func WithActions(actions []string) JobUpdateOption {
	return func(p *jobUpdateParams) { p.ActionsTaken = slices.Clone(actions) }
}

func WithDiagnosis(diagnosis []string) JobUpdateOption {
	return func(p *jobUpdateParams) { p.DriverDiagnosis = slices.Clone(diagnosis) }
}

func WithTMAUsed(used bool) JobUpdateOption {
	return func(p *jobUpdateParams) { p.TMAUsed = &used }
}

var allowedTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusNew:        {models.JobStatusInProgress},
	models.JobStatusInProgress: {models.JobStatusCompleted},
}

// applyUpdate mutates job according to opts and appends the matching log
// entries. It is shared by every Store implementation.
func applyUpdate(job *models.Job, now time.Time, opts []JobUpdateOption) error {
	var p jobUpdateParams
	for _, opt := range opts {
		opt(&p)
	}

	if p.Status != nil && *p.Status != job.Status {
		if !slices.Contains(allowedTransitions[job.Status], *p.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, *p.Status)
		}
		job.Status = *p.Status
		if job.Status == models.JobStatusCompleted {
			job.Log = append(job.Log, models.LogEntry{Event: models.EventJobCompleted, Timestamp: now})
		}
	}
	if p.AssignedTo != nil && *p.AssignedTo != job.AssignedTo {
		job.AssignedTo = *p.AssignedTo
		if job.AssignedTo != "" {
			job.Log = append(job.Log, models.LogEntry{Event: models.EventDriverAssigned, Timestamp: now})
		}
	}
	if p.Costs != nil {
		job.Costs = p.Costs
	}
	if p.DestinationNotes != nil {
		job.DestinationNotes = *p.DestinationNotes
	}
	if p.KeysLocation != nil {
		job.KeysLocation = *p.KeysLocation
	}
	if p.Category != nil {
		job.Category = *p.Category
	}
	if p.Priority != nil {
		job.Priority = *p.Priority
	}
	if p.ActionsTaken != nil {
		job.ActionsTaken = p.ActionsTaken
	}
	if p.DriverDiagnosis != nil {
		job.DriverDiagnosis = p.DriverDiagnosis
	}
	if p.TMAUsed != nil {
		job.TMAUsed = p.TMAUsed
	}
	return nil
}

// ValidLogEvent reports whether event may be appended to a job log by hand.
func ValidLogEvent(event string) bool {
	switch event {
	case models.EventJobReported, models.EventDriverAssigned, models.EventArrivedAtSite,
		models.EventArrivedAtDestination, models.EventJobCompleted:
		return true
	}
	return false
}
