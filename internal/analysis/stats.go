package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// DefaultTopN is the number of entries kept in each ranking.
const DefaultTopN = 3

// Count is one ranked value and how many completed jobs carried it.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Revenue sums the billed costs of completed jobs, in SEK.
type Revenue struct {
	Total         float64 `json:"total"`
	Deductibles   float64 `json:"deductibles"`
	OtherFees     float64 `json:"otherFees"`
	AveragePerJob float64 `json:"averagePerJob"`
	BilledJobs    int     `json:"billedJobs"`
	PaidOnSite    int     `json:"paidOnSite"`
}

// DriverCount is a driver and the number of jobs they completed.
type DriverCount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
}

// DashboardStats are the deterministic figures behind the dashboard report.
type DashboardStats struct {
	CompletedJobs int           `json:"completedJobs"`
	Revenue       Revenue       `json:"revenue"`
	TopDiagnoses  []Count       `json:"topDiagnoses"`
	TopActions    []Count       `json:"topActions"`
	TopLocations  []Count       `json:"topLocations"`
	// TopDrivers holds every driver tied for the most completed jobs.
	TopDrivers []DriverCount `json:"topDrivers"`
}

// Summarize computes dashboard statistics over the completed jobs in jobs.
// Jobs in any other status are ignored. Rankings keep at most topN entries
// (DefaultTopN when topN <= 0), sorted by count desc then value asc.
// Slices are never nil.
func Summarize(jobs []models.Job, users []models.User, topN int) DashboardStats {
	if topN <= 0 {
		topN = DefaultTopN
	}

	diagnoses := newTally()
	actions := newTally()
	locations := newTally()
	perDriver := make(map[string]int)

	var stats DashboardStats
	for _, job := range jobs {
		if job.Status != models.JobStatusCompleted {
			continue
		}
		stats.CompletedJobs++

		for _, d := range job.DriverDiagnosis {
			diagnoses.add(d)
		}
		for _, a := range job.ActionsTaken {
			actions.add(a)
		}
		locations.add(job.Location)

		if job.AssignedTo != "" {
			perDriver[job.AssignedTo]++
		}
		if job.Costs != nil {
			stats.Revenue.BilledJobs++
			stats.Revenue.Total += job.Costs.Total
			stats.Revenue.Deductibles += job.Costs.Deductible
			stats.Revenue.OtherFees += job.Costs.OtherFees
			if job.Costs.PaidOnSite {
				stats.Revenue.PaidOnSite++
			}
		}
	}
	if stats.Revenue.BilledJobs > 0 {
		stats.Revenue.AveragePerJob = stats.Revenue.Total / float64(stats.Revenue.BilledJobs)
	}

	stats.TopDiagnoses = diagnoses.top(topN)
	stats.TopActions = actions.top(topN)
	stats.TopLocations = locations.top(topN)
	stats.TopDrivers = topDrivers(perDriver, users)
	return stats
}

// topDrivers returns all drivers sharing the highest completed count,
// resolved to names. Unknown ids keep the id as name.
func topDrivers(perDriver map[string]int, users []models.User) []DriverCount {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	best := 0
	for _, n := range perDriver {
		best = max(best, n)
	}

	out := []DriverCount{}
	for id, n := range perDriver {
		if n != best {
			continue
		}
		name, ok := names[id]
		if !ok {
			name = id
		}
		out = append(out, DriverCount{ID: id, Name: name, Completed: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// tally counts values that differ only in case or spacing as one. The first
// spelling seen is the one reported.
type tally struct {
	counts map[string]*Count
}

func newTally() *tally {
	return &tally{counts: make(map[string]*Count)}
}

func (t *tally) add(value string) {
	key := NormalizeKey(value)
	if key == "" {
		return
	}
	c, ok := t.counts[key]
	if !ok {
		c = &Count{Value: truncateString(collapseSpace(value), 200)}
		t.counts[key] = c
	}
	c.Count++
}

func (t *tally) top(n int) []Count {
	out := make([]Count, 0, len(t.counts))
	for _, c := range t.counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// NormalizeKey is the grouping key for free-text values: collapsed
// whitespace, lower case, trimmed.
func NormalizeKey(s string) string {
	return strings.ToLower(collapseSpace(s))
}

func collapseSpace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
