// internal/workers/notification/deliver-notification/handler_test.go
package delivernotification

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
	}
	return m.SendEmailFunc(ctx, params)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc == nil {
		return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
	}
	return m.PublishFunc(ctx, params)
}

// ==========================
// Test Helper Functions
// ==========================

var recipientColumns = []string{"type", "message", "name", "email", "phone"}

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@jobboard.dev",
		SMSSenderID:  "JOBBOARD",
		Timeout:      5 * time.Second,
	}
}

func expectRecipient(mock sqlmock.Sqlmock, notificationID string, values ...driver.Value) {
	mock.ExpectQuery(`SELECT n.type, n.message, s.name, s.email, s.phone\s+FROM notifications n\s+LEFT JOIN job_seekers s`).
		WithArgs(notificationID).
		WillReturnRows(sqlmock.NewRows(recipientColumns).AddRow(values...))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name        string
		config      func(*Config)
		row         []driver.Value
		expected    string
		emails      int
		smsMessages int
	}{
		{
			name:     "applied sends email only",
			row:      []driver.Value{"applied", "You applied for Nurse at General Hospital", "Sam", "sam@example.com", "+15551234567"},
			expected: StatusSent,
			emails:   1,
		},
		{
			name:        "accepted sends email and sms",
			row:         []driver.Value{"accepted", "Your application for Nurse was accepted", "Sam", "sam@example.com", "+15551234567"},
			expected:    StatusSent,
			emails:      1,
			smsMessages: 1,
		},
		{
			name:     "channels disabled",
			config:   func(c *Config) { c.EmailEnabled, c.SMSEnabled = false, false },
			row:      []driver.Value{"accepted", "Your application for Nurse was accepted", "Sam", "sam@example.com", "+15551234567"},
			expected: StatusDisabled,
		},
		{
			name:     "recipient without contact details",
			row:      []driver.Value{"applied", "You applied for Nurse at General Hospital", nil, nil, nil},
			expected: StatusDisabled,
		},
		{
			name:     "unknown type",
			row:      []driver.Value{"archived", "Old", "Sam", "sam@example.com", nil},
			expected: StatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			notificationID := uuid.NewString()
			expectRecipient(mock, notificationID, tt.row...)

			cfg := createTestConfig()
			if tt.config != nil {
				tt.config(cfg)
			}
			mockSES, mockSNS := &MockSESService{}, &MockSNSService{}
			handler := NewHandler(cfg, db, mockSES, mockSNS, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{NotificationID: notificationID})

			require.NoError(t, err)
			assert.Equal(t, notificationID, output.NotificationID)
			assert.Equal(t, tt.expected, output.Status)
			_, err = time.Parse(time.RFC3339, output.SentAt)
			assert.NoError(t, err)
			assert.Len(t, mockSES.calls, tt.emails)
			assert.Len(t, mockSNS.calls, tt.smsMessages)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RendersEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	notificationID := uuid.NewString()
	expectRecipient(mock, notificationID, "applied", "You applied for Nurse at General Hospital", "Sam", "sam@example.com", nil)

	mockSES := &MockSESService{}
	handler := NewHandler(createTestConfig(), db, mockSES, nil, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{NotificationID: notificationID})
	require.NoError(t, err)

	require.Len(t, mockSES.calls, 1)
	sent := mockSES.calls[0]
	assert.Equal(t, "noreply@jobboard.dev", aws.ToString(sent.Source))
	assert.Equal(t, []string{"sam@example.com"}, sent.Destination.ToAddresses)
	assert.Equal(t, "Application received", aws.ToString(sent.Message.Subject.Data))
	assert.Contains(t, aws.ToString(sent.Message.Body.Text.Data), "Hi Sam,")
	assert.Contains(t, aws.ToString(sent.Message.Body.Text.Data), "You applied for Nurse at General Hospital")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_EmailFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	notificationID := uuid.NewString()
	expectRecipient(mock, notificationID, "accepted", "Accepted", "Sam", "sam@example.com", "+15551234567")

	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
			return nil, errors.New("SES throttled")
		},
	}
	mockSNS := &MockSNSService{}
	handler := NewHandler(createTestConfig(), db, mockSES, mockSNS, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{NotificationID: notificationID})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	assert.Empty(t, mockSNS.calls, "sms is skipped after an email failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	notificationID := uuid.NewString()
	expectRecipient(mock, notificationID, "rejected", "Rejected", "Sam", nil, "+15551234567")

	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			return nil, errors.New("SNS unavailable")
		},
	}
	handler := NewHandler(createTestConfig(), db, &MockSESService{}, mockSNS, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{NotificationID: notificationID})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NotificationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	notificationID := uuid.NewString()
	mock.ExpectQuery(`SELECT n.type`).
		WithArgs(notificationID).
		WillReturnRows(sqlmock.NewRows(recipientColumns))

	handler := NewHandler(createTestConfig(), db, &MockSESService{}, &MockSNSService{}, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{NotificationID: notificationID})

	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeNotificationNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_MalformedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, nil, nil, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{NotificationID: "n-1"})

	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT n.type`).WillReturnError(errors.New("database connection failed"))

	handler := NewHandler(createTestConfig(), db, nil, nil, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{NotificationID: uuid.NewString()})

	assert.Equal(t, apperrors.ErrCodeDatabaseQueryFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryableErrorCode(apperrors.CodeOf(err)))
}

// ==========================
// Template Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		data     map[string]interface{}
		expected string
	}{
		{"substitutes values", "Hi {{name}}", map[string]interface{}{"name": "Sam"}, "Hi Sam"},
		{"drops missing placeholders", "Hi {{name}}{{suffix}}!", map[string]interface{}{"name": "Sam"}, "Hi Sam!"},
		{"formats non-strings", "Score {{score}}", map[string]interface{}{"score": 42}, "Score 42"},
		{"unterminated placeholder kept", "Hi {{name", map[string]interface{}{}, "Hi {{name"},
		{"braces in values survive", "{{message}}{{footer}}", map[string]interface{}{"message": "You applied for {{Lead}} Dev at Acme"}, "You applied for {{Lead}} Dev at Acme"},
		{"values are not re-expanded", "Hi {{name}}", map[string]interface{}{"name": "{{message}}", "message": "x"}, "Hi {{message}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.tmpl, tt.data))
		})
	}
}
