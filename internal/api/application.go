// File: internal/api/application.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"scholarhub_client/internal/common"
)

// Application statuses assigned by moderators.
const (
	ApplicationPending    = "pending"
	ApplicationProcessing = "processing"
	ApplicationCompleted  = "completed"
	ApplicationRejected   = "rejected"
)

// Application is a student's scholarship application record.
type Application struct {
	ID              string    `json:"_id"`
	ScholarshipID   string    `json:"scholarship_id"`
	ScholarshipName string    `json:"scholarship_name"`
	UniversityName  string    `json:"university_name"`
	SubjectCategory string    `json:"subject_category"`
	Degree          string    `json:"degree"`
	ApplicationFees float64   `json:"application_fees"`
	ServiceCharge   float64   `json:"service_charge"`
	ApplicantEmail  string    `json:"applicant_email"`
	ApplicantName   string    `json:"applicant_name"`
	ApplicantPhone  string    `json:"applicant_phone,omitempty"`
	ApplicantPhoto  string    `json:"applicant_photo,omitempty"`
	Address         string    `json:"address,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	StudyGap        string    `json:"study_gap,omitempty"`
	SSCResult       string    `json:"ssc_result,omitempty"`
	HSCResult       string    `json:"hsc_result,omitempty"`
	Status          string    `json:"status"`
	Feedback        string    `json:"feedback,omitempty"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	AppliedAt       time.Time `json:"applied_at"`
}

// ApplicationInput is the apply/edit form payload.
type ApplicationInput struct {
	ScholarshipID  string `json:"scholarship_id" validate:"required"`
	ApplicantEmail string `json:"applicant_email" validate:"required,email"`
	ApplicantName  string `json:"applicant_name" validate:"required"`
	ApplicantPhone string `json:"applicant_phone" validate:"required"`
	ApplicantPhoto string `json:"applicant_photo,omitempty" validate:"omitempty,url"`
	Address        string `json:"address" validate:"required"`
	Gender         string `json:"gender" validate:"required,oneof=male female other"`
	StudyGap       string `json:"study_gap,omitempty"`
	SSCResult      string `json:"ssc_result" validate:"required"`
	HSCResult      string `json:"hsc_result" validate:"required"`
	TransactionID  string `json:"transaction_id,omitempty"`
}

// ApplicationService covers the student "my applications" screen and the
// moderator application dashboard.
type ApplicationService struct {
	client *Client
}

// NewApplicationService creates an ApplicationService.
func NewApplicationService(client *Client) *ApplicationService {
	return &ApplicationService{client: client}
}

// Apply submits a new application after the payment handshake completed.
func (s *ApplicationService) Apply(ctx context.Context, in ApplicationInput) (*Application, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Application
	if _, err := s.client.do(ctx, http.MethodPost, "/applications", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Mine lists the signed-in student's applications.
func (s *ApplicationService) Mine(ctx context.Context, email string) ([]Application, error) {
	query := url.Values{}
	query.Set("email", email)
	var out []Application
	if _, err := s.client.do(ctx, http.MethodGet, "/applications", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// All lists every application, paginated. Requires a moderator credential.
func (s *ApplicationService) All(ctx context.Context, page common.PageQuery) ([]Application, *common.Pagination, error) {
	query := url.Values{}
	page.Apply(query)
	var out []Application
	pagination, err := s.client.do(ctx, http.MethodGet, "/applications/all", query, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, pagination, nil
}

// Update edits a pending application. The backend rejects edits once processing.
func (s *ApplicationService) Update(ctx context.Context, id string, in ApplicationInput) (*Application, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Application
	if _, err := s.client.do(ctx, http.MethodPut, "/applications/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel withdraws an application.
func (s *ApplicationService) Cancel(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/applications/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// SetStatus moves an application through the moderation pipeline.
func (s *ApplicationService) SetStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	_, err := s.client.do(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id)+"/status", nil, body, nil)
	return err
}

// GiveFeedback attaches moderator feedback to an application.
func (s *ApplicationService) GiveFeedback(ctx context.Context, id, feedback string) error {
	body := map[string]string{"feedback": feedback}
	_, err := s.client.do(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id)+"/feedback", nil, body, nil)
	return err
}
