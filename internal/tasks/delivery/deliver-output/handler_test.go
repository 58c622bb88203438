package deliveroutput

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	commonerrors "weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/logger"
)

// ==========================
// Mock AWS Clients
// ==========================

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func testConfig(channel string) *Config {
	return &Config{
		Channel:  channel,
		To:       "family@example.com",
		From:     "planner@example.com",
		Timeout:  time.Second,
		TopicARN: "arn:aws:sns:us-east-2:123456789012:weekend",
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
	}
}

func testMessage() *Input {
	return &Input{
		Subject: "Weekend plans for 2025-12-20",
		Text:    "Visit the zoo.\n",
		HTML:    "<p>Visit the zoo.</p>",
	}
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_SES(t *testing.T) {
	client := new(MockSES)
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "planner@example.com" &&
			in.Destination.ToAddresses[0] == "family@example.com" &&
			aws.ToString(in.Message.Subject.Data) == "Weekend plans for 2025-12-20" &&
			aws.ToString(in.Message.Body.Text.Data) == "Visit the zoo.\n" &&
			aws.ToString(in.Message.Body.Html.Data) == "<p>Visit the zoo.</p>"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil)

	cfg := testConfig(ChannelSES)
	h := NewHandler(cfg, NewSESSender(client, cfg.From, cfg.To), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, ChannelSES, out.Channel)
	assert.Equal(t, "ses-123", out.MessageID)
	client.AssertExpectations(t)
}

func TestHandler_SESFailureIsFatal(t *testing.T) {
	client := new(MockSES)
	client.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	cfg := testConfig(ChannelSES)
	h := NewHandler(cfg, NewSESSender(client, cfg.From, cfg.To), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), testMessage())
	require.Error(t, err)

	std := commonerrors.Normalize(err)
	assert.Equal(t, commonerrors.ErrCodeDeliveryFailed, std.Code)
	assert.True(t, commonerrors.IsFatal(std.Code))
	assert.Equal(t, "ses", std.Metadata["channel"])
}

func TestHandler_SNSPublishesText(t *testing.T) {
	client := new(MockSNS)
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.TopicArn) == "arn:aws:sns:us-east-2:123456789012:weekend" &&
			aws.ToString(in.Message) == "Visit the zoo.\n"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-9")}, nil)

	cfg := testConfig(ChannelSNS)
	h := NewHandler(cfg, NewSNSSender(client, cfg.TopicARN), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "sns-9", out.MessageID)
	client.AssertExpectations(t)
}

func TestHandler_LogChannel(t *testing.T) {
	h := NewHandler(testConfig(ChannelLog), NewLogSender(logger.NewTestLogger(t)), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, ChannelLog, out.Channel)
	assert.Empty(t, out.MessageID)
}

func TestHandler_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		input   *Input
		wantErr error
	}{
		{"nil input", nil, nil, ErrEmptyMessage},
		{"empty text", nil, &Input{Subject: "x"}, ErrEmptyMessage},
		{"bad recipient", func(c *Config) { c.To = "not-an-address" }, testMessage(), ErrInvalidAddress},
		{"bad sender", func(c *Config) { c.From = "" }, testMessage(), ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(ChannelSES)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			client := new(MockSES)
			h := NewHandler(cfg, NewSESSender(client, cfg.From, cfg.To), logger.NewTestLogger(t))

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			client.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestNewSender(t *testing.T) {
	log := logger.NewNoOpLogger()

	sender, err := NewSender(context.Background(), testConfig(ChannelLog), log)
	require.NoError(t, err)
	assert.Equal(t, ChannelLog, sender.Channel())

	sender, err = NewSender(context.Background(), testConfig(ChannelSMTP), log)
	require.NoError(t, err)
	assert.Equal(t, ChannelSMTP, sender.Channel())

	_, err = NewSender(context.Background(), testConfig("pigeon"), log)
	assert.Error(t, err)
}

// ==========================
// SMTP Tests
// ==========================

func TestBuildMessage_MultipartAlternative(t *testing.T) {
	date := time.Date(2025, 12, 20, 7, 0, 0, 0, time.UTC)
	raw, err := buildMessage("planner@example.com", "family@example.com", "<1@smtp.example.com>", &Input{
		Subject: "Weekend plans for 2025-12-20 ☃",
		Text:    "Line one\nLine two\n",
		HTML:    "<p>Line one</p>",
	}, date)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	assert.Equal(t, "planner@example.com", msg.Header.Get("From"))
	assert.Equal(t, "family@example.com", msg.Header.Get("To"))
	assert.Equal(t, "<1@smtp.example.com>", msg.Header.Get("Message-ID"))

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Weekend plans for 2025-12-20 ☃", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=UTF-8", part.Header.Get("Content-Type"))
	text, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "Line one\r\nLine two\r\n", string(text))

	part, err = reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=UTF-8", part.Header.Get("Content-Type"))

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSMTPSender(testConfig(ChannelSMTP)).Send(ctx, testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
