package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func app(company, role string, status models.Status, applied time.Time) models.Application {
	return models.Application{ID: company + "/" + role + "/" + applied.String(), CompanyName: company, Role: role, Status: status, AppliedDate: applied}
}

func scenario() []models.Application {
	return []models.Application{
		app("A", "X", models.StatusApplied, day(2024, time.January, 5)),
		app("A", "Y", models.StatusAccepted, day(2024, time.January, 20)),
		app("B", "X", models.StatusRejected, day(2024, time.February, 1)),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDashboardScenario(t *testing.T) {
	agg := New(time.UTC)
	r, err := ParseDateRange("2024-01-01", "2024-02-28", time.UTC)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}

	d := agg.Dashboard(scenario(), r)

	if d.Total != 3 {
		t.Fatalf("total = %d, want 3", d.Total)
	}
	wantTally := StatusTally{
		models.StatusApplied:   1,
		models.StatusAccepted:  1,
		models.StatusWithdrawn: 0,
		models.StatusRejected:  1,
	}
	for st, want := range wantTally {
		got, ok := d.StatusTally[st]
		if !ok {
			t.Fatalf("status %s missing from tally", st)
		}
		if got != want {
			t.Errorf("tally[%s] = %d, want %d", st, got, want)
		}
	}

	if !almostEqual(d.AcceptanceRate, 100.0/3) {
		t.Errorf("acceptance rate = %v, want 33.33", d.AcceptanceRate)
	}

	if len(d.Monthly) != 2 {
		t.Fatalf("monthly len = %d, want 2", len(d.Monthly))
	}
	jan, feb := d.Monthly[0], d.Monthly[1]
	if jan.Label != "Jan 2024" || jan.Total != 2 || jan.Accepted != 1 || !almostEqual(jan.Rate, 50) {
		t.Errorf("unexpected january entry: %+v", jan)
	}
	if feb.Label != "Feb 2024" || feb.Total != 1 || feb.Accepted != 0 || feb.Rate != 0 {
		t.Errorf("unexpected february entry: %+v", feb)
	}

	ranked := agg.RankCompanies(scenario(), r, DefaultTopCompanies)
	want := []CompanyCount{{"A", 2}, {"B", 1}}
	if len(ranked) != len(want) {
		t.Fatalf("ranked = %+v, want %+v", ranked, want)
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Errorf("ranked[%d] = %+v, want %+v", i, ranked[i], want[i])
		}
	}
	if d.TopCompanies[0] != want[1] || d.TopCompanies[1] != want[0] {
		t.Errorf("display order = %+v, want reverse of %+v", d.TopCompanies, want)
	}
}

func TestEmptyInput(t *testing.T) {
	agg := New(time.UTC)
	d := agg.Dashboard(nil, DateRange{})

	if d.Total != 0 || d.StatusTally.Total() != 0 {
		t.Fatalf("expected zero totals, got %+v", d)
	}
	if len(d.StatusTally) != len(models.Statuses) {
		t.Errorf("tally should list every status, got %v", d.StatusTally)
	}
	if d.AcceptanceRate != 0 || math.IsNaN(d.AcceptanceRate) {
		t.Errorf("acceptance rate = %v, want 0", d.AcceptanceRate)
	}
	if len(d.Monthly) != 0 || len(d.Roles) != 0 || len(d.TopCompanies) != 0 || len(d.Recent) != 0 {
		t.Errorf("expected empty series, got %+v", d)
	}
}

func TestTallySumsToFilteredTotal(t *testing.T) {
	agg := New(time.UTC)
	apps := append(scenario(),
		app("C", "Z", models.StatusWithdrawn, day(2023, time.December, 31)),
		app("C", "Z", models.StatusAccepted, day(2024, time.March, 1)),
	)
	r := DateRange{Start: day(2024, time.January, 1), End: day(2024, time.February, 29)}

	tally := agg.StatusTally(apps, r)
	if got, want := tally.Total(), len(agg.Filter(apps, r)); got != want {
		t.Errorf("tally total = %d, filtered = %d", got, want)
	}
	if tally.Total() != 3 {
		t.Errorf("expected boundaries to exclude out-of-range records, tally = %v", tally)
	}
}

func TestFilterIsInclusiveOnDatePortion(t *testing.T) {
	agg := New(time.UTC)
	apps := []models.Application{
		app("A", "X", models.StatusApplied, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		app("B", "X", models.StatusApplied, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)),
		app("C", "X", models.StatusApplied, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}
	r, err := ParseDateRange("2024-01-01", "2024-01-31", time.UTC)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	got := agg.Filter(apps, r)
	if len(got) != 2 || got[0].CompanyName != "A" || got[1].CompanyName != "B" {
		t.Errorf("unexpected filter result: %+v", got)
	}
}

func TestFilterBoundsKeepTheirOwnDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	apps := []models.Application{
		app("Dec", "X", models.StatusApplied, time.Date(2023, 12, 31, 12, 0, 0, 0, ny)),
		app("Jan", "X", models.StatusApplied, time.Date(2024, 1, 1, 12, 0, 0, 0, ny)),
		app("Feb", "X", models.StatusApplied, time.Date(2024, 2, 1, 12, 0, 0, 0, ny)),
	}
	// UTC midnight is still the previous evening in New York; the bound means January 1st regardless.
	r := DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	got := New(ny).Filter(apps, r)
	if len(got) != 1 || got[0].CompanyName != "Jan" {
		t.Errorf("range [2024-01-01, 2024-01-31] kept %+v, want only Jan", got)
	}
}

func TestTallyIgnoresUnknownStatuses(t *testing.T) {
	apps := append(scenario(), app("D", "X", models.Status("Ghosted"), day(2024, time.January, 9)))
	tally := New(time.UTC).StatusTally(apps, DateRange{})
	if len(tally) != len(models.Statuses) {
		t.Errorf("tally keys = %v, want only %v", tally, models.Statuses)
	}
	if _, ok := tally["Ghosted"]; ok {
		t.Error("unknown status should not get its own key")
	}
	if tally.Total() != 3 {
		t.Errorf("tally total = %d, want 3", tally.Total())
	}
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"open", "", "", false},
		{"start only", "2024-01-01", "", false},
		{"same day", "2024-01-01", "2024-01-01", false},
		{"inverted", "2024-02-01", "2024-01-01", true},
		{"bad layout", "01/02/2024", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateRange(tt.start, tt.end, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMonthlySeriesUsesReportingTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-02-01 03:00 UTC is still January 31st in New York.
	apps := []models.Application{
		app("A", "X", models.StatusAccepted, time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)),
	}

	if got := New(time.UTC).MonthlySeries(apps, DateRange{}); got[0].Label != "Feb 2024" {
		t.Errorf("utc label = %s, want Feb 2024", got[0].Label)
	}
	if got := New(ny).MonthlySeries(apps, DateRange{}); got[0].Label != "Jan 2024" {
		t.Errorf("new york label = %s, want Jan 2024", got[0].Label)
	}
}

func TestMonthlySeriesOnlyPresentMonths(t *testing.T) {
	agg := New(time.UTC)
	apps := []models.Application{
		app("A", "X", models.StatusApplied, day(2024, time.May, 3)),
		app("B", "X", models.StatusApplied, day(2024, time.January, 3)),
		app("C", "X", models.StatusAccepted, day(2024, time.May, 9)),
	}
	series := agg.MonthlySeries(apps, DateRange{})
	if len(series) != 2 {
		t.Fatalf("series = %+v, want two months", series)
	}
	if series[0].Label != "Jan 2024" || series[1].Label != "May 2024" {
		t.Errorf("series not chronological: %+v", series)
	}
	if series[1].Total != 2 || !almostEqual(series[1].Rate, 50) {
		t.Errorf("unexpected may entry: %+v", series[1])
	}
}

func TestRoleRankingAscendingWithStableTies(t *testing.T) {
	agg := New(time.UTC)
	apps := []models.Application{
		app("A", "Backend", models.StatusAccepted, day(2024, 1, 1)),
		app("B", "Frontend", models.StatusRejected, day(2024, 1, 2)),
		app("C", "backend", models.StatusApplied, day(2024, 1, 3)),
		app("D", "Backend", models.StatusApplied, day(2024, 1, 4)),
		app("E", "Data", models.StatusAccepted, day(2024, 1, 5)),
	}
	roles := agg.RoleRanking(apps, DateRange{})

	wantOrder := []string{"Frontend", "backend", "Backend", "Data"}
	if len(roles) != len(wantOrder) {
		t.Fatalf("roles = %+v", roles)
	}
	for i, want := range wantOrder {
		if roles[i].Role != want {
			t.Errorf("roles[%d] = %s, want %s", i, roles[i].Role, want)
		}
		if i > 0 && roles[i].Rate < roles[i-1].Rate {
			t.Errorf("ranking not non-decreasing at %d: %+v", i, roles)
		}
		if roles[i].Total < 1 {
			t.Errorf("role %s has empty group", roles[i].Role)
		}
	}
	if roles[2].Total != 2 || roles[2].Accepted != 1 || !almostEqual(roles[2].Rate, 50) {
		t.Errorf("unexpected Backend entry: %+v", roles[2])
	}
}

func TestTopCompaniesLimitAndTies(t *testing.T) {
	agg := New(time.UTC)
	var apps []models.Application
	add := func(company string, n int) {
		for i := 0; i < n; i++ {
			apps = append(apps, app(company, "R", models.StatusApplied, day(2024, 1, 1+len(apps))))
		}
	}
	add("Acme", 1)
	add("Globex", 3)
	add("Initech", 1)
	add("Umbrella", 2)

	ranked := agg.RankCompanies(apps, DateRange{}, 3)
	want := []CompanyCount{{"Globex", 3}, {"Umbrella", 2}, {"Acme", 1}}
	if len(ranked) != 3 {
		t.Fatalf("ranked = %+v", ranked)
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Errorf("ranked[%d] = %+v, want %+v", i, ranked[i], want[i])
		}
	}

	display := agg.TopCompanies(apps, DateRange{}, 3)
	for i := range display {
		if display[i] != ranked[len(ranked)-1-i] {
			t.Errorf("display[%d] = %+v, want %+v", i, display[i], ranked[len(ranked)-1-i])
		}
	}

	if got := agg.RankCompanies(apps, DateRange{}, 0); len(got) != 4 {
		t.Errorf("default limit should keep all four companies, got %d", len(got))
	}
}

func TestMostRecent(t *testing.T) {
	agg := New(time.UTC)
	apps := []models.Application{
		app("A", "X", models.StatusApplied, day(2024, 3, 1)),
		app("B", "X", models.StatusApplied, day(2024, 5, 1)),
		app("C", "X", models.StatusApplied, day(2024, 1, 1)),
		app("D", "X", models.StatusApplied, day(2024, 4, 1)),
	}

	got := agg.MostRecent(apps, DateRange{}, 2)
	if len(got) != 2 || got[0].CompanyName != "B" || got[1].CompanyName != "D" {
		t.Errorf("unexpected most recent: %+v", got)
	}

	all := agg.MostRecent(apps, DateRange{}, 10)
	if len(all) != len(apps) {
		t.Errorf("len = %d, want %d", len(all), len(apps))
	}
	if apps[0].CompanyName != "A" {
		t.Error("input slice was reordered")
	}
}
