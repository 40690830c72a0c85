// Package analytics derives dashboard figures from a list of applications.
//
// Every function is pure: it takes the records already fetched from the store
// plus a DateRange and never performs I/O. Grouping by company or role uses
// exact string matches, and ties are always resolved by the order in which a
// group is first seen in the input.
package analytics

import (
	"sort"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/models"
)

const (
	DefaultTopCompanies = 10
	DefaultRecent       = 5
)

// Aggregator buckets dates in one reporting timezone.
type Aggregator struct {
	loc *time.Location
}

// New returns an Aggregator for loc. A nil loc means time.Local.
func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{loc: loc}
}

// Location returns the reporting timezone.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// StatusTally counts applications per status. Every status in models.Statuses is
// present and no other key is; rows carrying an unknown status are not counted.
type StatusTally map[models.Status]int

func (t StatusTally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

type MonthlyRate struct {
	Month    time.Time `json:"month"`
	Label    string    `json:"label"`
	Total    int       `json:"total"`
	Accepted int       `json:"accepted"`
	Rate     float64   `json:"rate"`
}

type RoleRate struct {
	Role     string  `json:"role"`
	Total    int     `json:"total"`
	Accepted int     `json:"accepted"`
	Rate     float64 `json:"rate"`
}

type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Dashboard bundles every derivation for one date range.
type Dashboard struct {
	Range          DateRange            `json:"range"`
	Total          int                  `json:"total"`
	StatusTally    StatusTally          `json:"status_tally"`
	AcceptanceRate float64              `json:"acceptance_rate"`
	Monthly        []MonthlyRate        `json:"monthly"`
	Roles          []RoleRate           `json:"roles"`
	TopCompanies   []CompanyCount       `json:"top_companies"`
	Recent         []models.Application `json:"recent"`
}

func (a *Aggregator) StatusTally(apps []models.Application, r DateRange) StatusTally {
	return tally(a.Filter(apps, r))
}

func (a *Aggregator) AcceptanceRate(apps []models.Application, r DateRange) float64 {
	return acceptanceRate(a.Filter(apps, r))
}

func (a *Aggregator) MonthlySeries(apps []models.Application, r DateRange) []MonthlyRate {
	return a.monthly(a.Filter(apps, r))
}

func (a *Aggregator) RoleRanking(apps []models.Application, r DateRange) []RoleRate {
	return roleRanking(a.Filter(apps, r))
}

// RankCompanies returns at most n companies, most applications first.
func (a *Aggregator) RankCompanies(apps []models.Application, r DateRange, n int) []CompanyCount {
	return rankCompanies(a.Filter(apps, r), n)
}

// TopCompanies returns RankCompanies in display order: ascending by count,
// so the largest bar ends up last.
func (a *Aggregator) TopCompanies(apps []models.Application, r DateRange, n int) []CompanyCount {
	return displayOrder(rankCompanies(a.Filter(apps, r), n))
}

func (a *Aggregator) MostRecent(apps []models.Application, r DateRange, k int) []models.Application {
	return mostRecent(a.Filter(apps, r), k)
}

// Dashboard filters once and computes every figure.
func (a *Aggregator) Dashboard(apps []models.Application, r DateRange) Dashboard {
	in := a.Filter(apps, r)
	return Dashboard{
		Range:          r,
		Total:          len(in),
		StatusTally:    tally(in),
		AcceptanceRate: acceptanceRate(in),
		Monthly:        a.monthly(in),
		Roles:          roleRanking(in),
		TopCompanies:   displayOrder(rankCompanies(in, DefaultTopCompanies)),
		Recent:         mostRecent(in, DefaultRecent),
	}
}

func tally(apps []models.Application) StatusTally {
	t := make(StatusTally, len(models.Statuses))
	for _, st := range models.Statuses {
		t[st] = 0
	}
	for _, app := range apps {
		if _, ok := t[app.Status]; ok {
			t[app.Status]++
		}
	}
	return t
}

func rate(accepted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(accepted) / float64(total) * 100
}

func acceptanceRate(apps []models.Application) float64 {
	accepted := 0
	for _, app := range apps {
		if app.Status == models.StatusAccepted {
			accepted++
		}
	}
	return rate(accepted, len(apps))
}

func (a *Aggregator) monthly(apps []models.Application) []MonthlyRate {
	index := make(map[time.Time]int)
	series := []MonthlyRate{}
	for _, app := range apps {
		local := app.AppliedDate.In(a.loc)
		month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, a.loc)
		i, ok := index[month]
		if !ok {
			i = len(series)
			index[month] = i
			series = append(series, MonthlyRate{Month: month, Label: month.Format("Jan 2006")})
		}
		series[i].Total++
		if app.Status == models.StatusAccepted {
			series[i].Accepted++
		}
	}
	for i := range series {
		series[i].Rate = rate(series[i].Accepted, series[i].Total)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})
	return series
}

func roleRanking(apps []models.Application) []RoleRate {
	index := make(map[string]int)
	roles := []RoleRate{}
	for _, app := range apps {
		i, ok := index[app.Role]
		if !ok {
			i = len(roles)
			index[app.Role] = i
			roles = append(roles, RoleRate{Role: app.Role})
		}
		roles[i].Total++
		if app.Status == models.StatusAccepted {
			roles[i].Accepted++
		}
	}
	for i := range roles {
		roles[i].Rate = rate(roles[i].Accepted, roles[i].Total)
	}
	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Rate < roles[j].Rate
	})
	return roles
}

func rankCompanies(apps []models.Application, n int) []CompanyCount {
	if n <= 0 {
		n = DefaultTopCompanies
	}
	index := make(map[string]int)
	ranked := []CompanyCount{}
	for _, app := range apps {
		i, ok := index[app.CompanyName]
		if !ok {
			i = len(ranked)
			index[app.CompanyName] = i
			ranked = append(ranked, CompanyCount{Company: app.CompanyName})
		}
		ranked[i].Count++
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func displayOrder(ranked []CompanyCount) []CompanyCount {
	out := make([]CompanyCount, len(ranked))
	for i, c := range ranked {
		out[len(ranked)-1-i] = c
	}
	return out
}

func mostRecent(apps []models.Application, k int) []models.Application {
	if k <= 0 {
		k = DefaultRecent
	}
	sorted := make([]models.Application, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AppliedDate.After(sorted[j].AppliedDate)
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
