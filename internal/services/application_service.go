package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/justsurfingit/job-application-tracker/internal/apperr"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"github.com/justsurfingit/job-application-tracker/internal/storage"
)

const pdfMIME = "application/pdf"

// NewApplication holds the user-supplied fields of a new application.
type NewApplication struct {
	CompanyName string
	Role        string
	Status      string // empty means models.DefaultStatus
	ResumeURL   *string
}

// ResumeFile is an uploaded resume.
type ResumeFile struct {
	Name string
	Body []byte
}

// DeleteResult describes a completed delete. ResumeCleanupErr is set when the
// row was removed but its resume blob could not be.
type DeleteResult struct {
	Application      models.Application
	ResumeCleanupErr error
}

type ApplicationService struct {
	Records storage.RecordStore
	Blobs   storage.BlobStore
	Clock   func() time.Time
}

func NewApplicationService(records storage.RecordStore, blobs storage.BlobStore) *ApplicationService {
	return &ApplicationService{
		Records: records,
		Blobs:   blobs,
		Clock:   time.Now,
	}
}

// Create validates and stores a new application stamped with the current time.
// Nothing is sent to the store when validation fails.
func (s *ApplicationService) Create(ctx context.Context, req NewApplication) (*models.Application, error) {
	app, err := validateNew(req)
	if err != nil {
		return nil, err
	}
	app.ResumeURL = req.ResumeURL
	app.AppliedDate = s.Clock()

	created, err := s.Records.Insert(ctx, app)
	if err != nil {
		return nil, storeError("failed to save application", err)
	}
	return created, nil
}

// Submit uploads the resume (when present) and then creates the application.
// A failed upload aborts before any row is written.
func (s *ApplicationService) Submit(ctx context.Context, req NewApplication, resume *ResumeFile) (*models.Application, error) {
	if resume == nil {
		return s.Create(ctx, req)
	}
	if _, err := validateNew(req); err != nil {
		return nil, err
	}

	url, err := s.UploadResume(ctx, *resume, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return nil, err
	}
	req.ResumeURL = &url

	created, err := s.Create(ctx, req)
	if err != nil {
		s.removeResume(ctx, url)
		return nil, err
	}
	return created, nil
}

// ListAll returns every application, newest first. It always reads from the store.
func (s *ApplicationService) ListAll(ctx context.Context) ([]models.Application, error) {
	apps, err := s.Records.Select(ctx)
	if err != nil {
		return nil, storeError("failed to fetch applications", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// UpdateStatus changes the status of one application and returns the new state.
// Writing the current status again is harmless.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, newStatus string) (*models.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.NewValidationError("application id is required", map[string]string{"id": "required"})
	}
	status, ok := models.ParseStatus(newStatus)
	if !ok {
		return nil, invalidStatus(newStatus)
	}

	updated, err := s.Records.Update(ctx, id, storage.Patch{Status: &status})
	if err != nil {
		return nil, storeError("failed to update status", err)
	}
	return updated, nil
}

// Delete removes the resume blob (best effort) and then the row.
func (s *ApplicationService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.NewValidationError("application id is required", map[string]string{"id": "required"})
	}
	app, err := s.Records.Get(ctx, id)
	if err != nil {
		return nil, storeError("failed to load application", err)
	}

	result := &DeleteResult{Application: *app}
	if app.ResumeURL != nil && *app.ResumeURL != "" {
		result.ResumeCleanupErr = s.removeResume(ctx, *app.ResumeURL)
	}

	if err := s.Records.Delete(ctx, id); err != nil {
		return nil, storeError("failed to delete application", err)
	}
	return result, nil
}

// UploadResume stores a PDF resume and returns its public URL.
func (s *ApplicationService) UploadResume(ctx context.Context, file ResumeFile, company string) (string, error) {
	if len(file.Body) == 0 {
		return "", apperr.NewValidationError("resume file is empty", map[string]string{"resume": "empty"})
	}
	mt := mimetype.Detect(file.Body)
	if !mt.Is(pdfMIME) {
		return "", apperr.NewValidationError("resume must be a PDF", map[string]string{"resume": "detected " + mt.String()})
	}

	key := ResumeKey(company, file.Name, s.Clock())
	if err := s.Blobs.Upload(ctx, key, file.Body, pdfMIME); err != nil {
		log.Printf("❌ Resume upload failed for %s: %v", key, err)
		return "", apperr.New(apperr.CodeUploadFailed, "failed to upload resume", err)
	}
	return s.Blobs.PublicURL(key), nil
}

// VerifyStatusConstraint checks that the store accepts exactly models.Statuses.
// Stores without their own constraint pass.
func (s *ApplicationService) VerifyStatusConstraint(ctx context.Context) error {
	allowed, enforced, err := s.Records.AllowedStatuses(ctx)
	if err != nil {
		return storeError("failed to read status constraint", err)
	}
	if !enforced {
		log.Println("⚠️ Record store does not enforce statuses; relying on service validation.")
		return nil
	}

	want := models.StatusNames()
	if !sameSet(allowed, want) {
		return fmt.Errorf("status constraint mismatch: store allows %v, application uses %v", allowed, want)
	}
	return nil
}

// ResumeKey builds the storage key <company>_<YYYYMMDD_HHMMSS><mmm>_<file>.
// Spaces in the company become underscores; the file name loses any directory part.
func ResumeKey(company, fileName string, now time.Time) string {
	company = strings.ReplaceAll(strings.TrimSpace(company), " ", "_")
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "resume.pdf"
	}
	stamp := fmt.Sprintf("%s%03d", now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond))
	return fmt.Sprintf("%s_%s_%s", company, stamp, name)
}

// removeResume deletes the blob behind url. Failures are only logged.
func (s *ApplicationService) removeResume(ctx context.Context, url string) error {
	key, ok := s.Blobs.KeyFromURL(url)
	if !ok {
		err := fmt.Errorf("resume url %q does not belong to the blob store", url)
		log.Printf("⚠️ Could not delete resume file: %v", err)
		return err
	}
	if err := s.Blobs.Remove(ctx, key); err != nil {
		log.Printf("⚠️ Could not delete resume file %s: %v", key, err)
		return err
	}
	return nil
}

func validateNew(req NewApplication) (models.Application, error) {
	fields := map[string]string{}
	company := strings.TrimSpace(req.CompanyName)
	role := strings.TrimSpace(req.Role)
	if company == "" {
		fields["company_name"] = "required"
	}
	if role == "" {
		fields["role"] = "required"
	}
	if len(fields) > 0 {
		return models.Application{}, apperr.NewValidationError("company name and role are required", fields)
	}

	status := models.DefaultStatus
	if req.Status != "" {
		var ok bool
		if status, ok = models.ParseStatus(req.Status); !ok {
			return models.Application{}, invalidStatus(req.Status)
		}
	}
	return models.Application{CompanyName: company, Role: role, Status: status}, nil
}

func invalidStatus(status string) error {
	return apperr.NewValidationError(
		fmt.Sprintf("invalid status %q", status),
		map[string]string{"status": "must be one of: " + strings.Join(models.StatusNames(), ", ")},
	)
}

// storeError maps a storage error onto the service taxonomy.
func storeError(msg string, err error) error {
	switch storage.KindOf(err) {
	case storage.KindNotFound:
		return apperr.New(apperr.CodeNotFound, "application not found", err)
	case storage.KindConstraint:
		e := apperr.New(apperr.CodeValidation, "invalid status: rejected by the database constraint", err)
		e.Fields = map[string]string{"status": "must be one of: " + strings.Join(models.StatusNames(), ", ")}
		return e
	default:
		return apperr.New(apperr.CodeStoreUnavailable, msg, err)
	}
}

func sameSet(a, b []string) bool {
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		if seen[v] == 0 {
			return false
		}
		seen[v]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
