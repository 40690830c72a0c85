package services

import (
	"strings"

	"github.com/justsurfingit/job-application-tracker/internal/models"
)

// Search keeps the applications whose company or role contains query,
// ignoring case. A blank query returns apps unchanged.
func Search(apps []models.Application, query string) []models.Application {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return apps
	}
	out := []models.Application{}
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.CompanyName), q) || strings.Contains(strings.ToLower(app.Role), q) {
			out = append(out, app)
		}
	}
	return out
}
