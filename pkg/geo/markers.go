package geo

import "github.com/kiranshivaraju/rescueassist/pkg/models"

type MarkerKind string

const (
	MarkerDriver MarkerKind = "driver"
	MarkerJob    MarkerKind = "job"
)

// Marker is one pin on the live map.
type Marker struct {
	Kind   MarkerKind `json:"kind"`
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Detail string     `json:"detail"`
	Point
}

// Markers returns a pin for every positioned driver followed by a pin for
// every new job, projected onto b.
func Markers(b Bounds, users []models.User, jobs []models.Job) []Marker {
	out := []Marker{}
	for _, u := range users {
		if u.Role != models.RoleDriver || u.Position == nil {
			continue
		}
		out = append(out, Marker{
			Kind:   MarkerDriver,
			ID:     u.ID,
			Label:  u.Name,
			Detail: "Status: Tillgänglig",
			Point:  b.Project(*u.Position),
		})
	}
	for _, j := range jobs {
		if j.Status != models.JobStatusNew {
			continue
		}
		out = append(out, Marker{
			Kind:   MarkerJob,
			ID:     j.ID,
			Label:  "Nytt Uppdrag: " + j.ID,
			Detail: j.Location,
			Point:  b.Project(j.Position),
		})
	}
	return out
}
