// internal/workers/notification/deliver-notification/handler.go
package delivernotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	awsclient "jobboard-workers/internal/common/aws"
	"jobboard-workers/internal/common/camunda"
	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "deliver-notification"

var schema = validation.MustCompile(inputSchema)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	sesClient SESService
	snsClient SNSService
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

// NewHandler builds the handler. Either client may be nil when its channel is disabled.
func NewHandler(config *Config, db *sql.DB, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
		sesClient: sesClient,
		snsClient: snsClient,
		errors:    apperrors.NewErrorHandler(l),
		logger:    l,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if result := schema.ValidateVariables(job.Variables); !result.Valid {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

type recipient struct {
	notificationType string
	message          string
	name             string
	email            string
	phone            string
}

// Execute sends a stored notification to its recipient over the enabled
// channels. Channel failures are reported in the status, not as errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !validation.IsUUID(input.NotificationID) {
		return nil, apperrors.NewNotificationNotFoundError(input.NotificationID)
	}

	rcpt, err := h.loadRecipient(ctx, input.NotificationID)
	if err != nil {
		return nil, err
	}

	output := &Output{
		NotificationID: input.NotificationID,
		Status:         StatusDisabled,
		SentAt:         h.now().Format(time.RFC3339),
	}

	tmpl, ok := templates[rcpt.notificationType]
	if !ok {
		h.logger.Warn("no template for notification type", map[string]interface{}{
			"notificationId": input.NotificationID,
			"type":           rcpt.notificationType,
		})
		return output, nil
	}

	data := map[string]interface{}{
		"name":    rcpt.name,
		"message": rcpt.message,
	}
	subject := renderTemplate(tmpl.subject, data)
	body := renderTemplate(tmpl.body, data)

	sent := false

	if h.config.EmailEnabled && h.sesClient != nil && validation.ValidateEmail(rcpt.email) {
		_, err := h.sesClient.SendEmail(ctx, awsclient.NewEmailInput(h.config.FromEmail, rcpt.email, subject, body))
		if err != nil {
			metrics.NotificationsDelivered.WithLabelValues(ChannelEmail, StatusFailed).Inc()
			h.logger.Error("email send failed", map[string]interface{}{
				"notificationId": input.NotificationID,
				"error":          apperrors.NewNotificationSendFailedError(ChannelEmail, err),
			})
			output.Status = StatusFailed
			return output, nil
		}
		metrics.NotificationsDelivered.WithLabelValues(ChannelEmail, StatusSent).Inc()
		sent = true
	}

	// SMS only for decisions on an application.
	if tmpl.sms && h.config.SMSEnabled && h.snsClient != nil && validation.ValidatePhone(rcpt.phone) {
		_, err := h.snsClient.Publish(ctx, awsclient.NewSMSInput(h.config.SMSSenderID, rcpt.phone, rcpt.message))
		if err != nil {
			metrics.NotificationsDelivered.WithLabelValues(ChannelSMS, StatusFailed).Inc()
			h.logger.Error("SMS send failed", map[string]interface{}{
				"notificationId": input.NotificationID,
				"error":          apperrors.NewNotificationSendFailedError(ChannelSMS, err),
			})
			output.Status = StatusFailed
			return output, nil
		}
		metrics.NotificationsDelivered.WithLabelValues(ChannelSMS, StatusSent).Inc()
		sent = true
	}

	if sent {
		output.Status = StatusSent
	}
	h.logger.Info("notification delivered", map[string]interface{}{
		"notificationId": input.NotificationID,
		"status":         output.Status,
	})
	return output, nil
}

func (h *Handler) loadRecipient(ctx context.Context, notificationID string) (*recipient, error) {
	var (
		r                  recipient
		name, email, phone sql.NullString
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT n.type, n.message, s.name, s.email, s.phone
		FROM notifications n
		LEFT JOIN job_seekers s ON s.id = n.recipient_id
		WHERE n.id = $1`,
		notificationID,
	).Scan(&r.notificationType, &r.message, &name, &email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotificationNotFoundError(notificationID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("load notification recipient", err)
	}
	r.name, r.email, r.phone = name.String, email.String, phone.String
	if r.name == "" {
		r.name = "there"
	}
	return &r, nil
}

// renderTemplate substitutes {{key}} placeholders in one pass over the
// template. Unknown placeholders are dropped; substituted values are copied
// verbatim, so braces inside them survive.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	var b strings.Builder
	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			break
		}
		b.WriteString(rest[:start])
		if v, ok := data[rest[start+2:start+end]]; ok && v != nil {
			b.WriteString(fmt.Sprintf("%v", v))
		}
		rest = rest[start+end+2:]
	}
	b.WriteString(rest)
	return b.String()
}
