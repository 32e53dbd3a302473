package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/pkg/jobs"
	"github.com/noah-isme/svshs-enrollment-api/pkg/mail"
)

// ConfirmationNotice carries everything the confirmation email needs.
type ConfirmationNotice struct {
	Email      string
	FirstName  string
	LastName   string
	Reference  string
	SchoolYear string
	Semester   string
	YearLevel  string
	Strand     string
}

const confirmationTemplate = `<div style="font-family:Arial,sans-serif;line-height:1.6;color:#333;">
  <h2>{{.SchoolName}} Enrollment Confirmation</h2>
  <p>Dear <strong>{{.FirstName}} {{.LastName}}</strong>,</p>
  <p>Thank you for enrolling at <strong>{{.SchoolName}}</strong>! Your application for
  <strong>{{.Semester}} Semester SY {{.SchoolYear}}</strong> has been received.</p>
  <p><strong>Reference Number:</strong> {{.Reference}}</p>
  <p><strong>Year Level:</strong> {{.YearLevel}}<br>
  <strong>Strand:</strong> {{.Strand}}<br>
  <strong>Status:</strong> Pending</p>
  <p>You can track your enrollment status anytime using our official mobile app.</p>
  <hr>
  <p style="font-size:0.9em;color:#666;">This is an automated message. Please do not reply.
  Questions? Contact <a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a>.</p>
</div>`

var confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationTemplate))

// NotificationService dispatches confirmation emails through the background
// queue. Failures retry a bounded number of times and are then dropped with
// a log line; they never affect a committed enrollment.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mail.Mailer
	logger *zap.Logger

	schoolName   string
	contactEmail string
	sendTimeout  time.Duration
}

// NotificationConfig tunes the dispatcher.
type NotificationConfig struct {
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
	SendTimeout  time.Duration
	SchoolName   string
	ContactEmail string
}

// NewNotificationService constructs the service and its queue. Call Start
// before enqueueing and Stop at shutdown.
func NewNotificationService(mailer mail.Mailer, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	svc := &NotificationService{
		mailer:       mailer,
		logger:       logger,
		schoolName:   cfg.SchoolName,
		contactEmail: cfg.ContactEmail,
		sendTimeout:  cfg.SendTimeout,
	}
	svc.queue = jobs.NewQueue("notifications", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// EnqueueConfirmation queues a confirmation email. Best effort: when the
// queue rejects the job the error is logged and swallowed.
func (s *NotificationService) EnqueueConfirmation(notice ConfirmationNotice) {
	if notice.Email == "" {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "enrollment_confirmation",
		Payload: notice,
	})
	if err != nil {
		s.logger.Error("failed to enqueue confirmation email",
			zap.String("to", notice.Email), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(ConfirmationNotice)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}

	body, err := s.renderConfirmation(notice)
	if err != nil {
		s.logger.Error("failed to render confirmation email", zap.Error(err))
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	msg := mail.Message{
		To:       notice.Email,
		ToName:   fmt.Sprintf("%s %s", notice.FirstName, notice.LastName),
		Subject:  fmt.Sprintf("%s Enrollment Confirmation", s.schoolName),
		HTMLBody: body,
		TextBody: fmt.Sprintf("Your enrollment application has been received. Reference: %s", notice.Reference),
	}
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", notice.Email, err)
	}
	return nil
}

func (s *NotificationService) renderConfirmation(notice ConfirmationNotice) (string, error) {
	data := struct {
		ConfirmationNotice
		SchoolName   string
		ContactEmail string
	}{notice, s.schoolName, s.contactEmail}

	buf := &bytes.Buffer{}
	if err := confirmationTmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
