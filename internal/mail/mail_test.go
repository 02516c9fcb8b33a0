package mail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixhoffmnn/latex-templates/internal/assemble"
	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/registry"
)

func document(t *testing.T, customerName string) (*config.Config, *assemble.Document) {
	t.Helper()
	cfg := config.Default("Max Mustermann")
	reg, err := registry.NewService([]model.Addressee{{
		CustomerID: 1,
		Address:    model.Address{Name: customerName, City: "Dresden"},
		Email:      "info@acme.de",
	}})
	require.NoError(t, err)
	item, err := model.NewLineItem("Beratung", "", 1, model.UnitHour, decimal.NewFromInt(80))
	require.NoError(t, err)
	doc, err := assemble.New(cfg, reg).Assemble(model.Invoice{
		CustomerID: 1,
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Items:      []model.LineItem{item},
	}, 1)
	require.NoError(t, err)
	return cfg, doc
}

func TestCompose(t *testing.T) {
	cfg, doc := document(t, "Acme <script>alert(1)</script>")
	d := Compose(cfg, doc, "out/RE0001_20240101_1.pdf")

	assert.Equal(t, "rechnung@example.com", d.From)
	assert.Equal(t, "info@acme.de", d.To)
	assert.Equal(t, "rechnung@example.com", d.BCC)
	assert.Equal(t, "Rechnung RE0001 vom 01.01.2024", d.Subject)
	assert.Contains(t, d.HTMLBody, "<strong>RE0001</strong>")
	assert.Contains(t, d.HTMLBody, "<strong>15.01.2024</strong>")
	assert.NotContains(t, d.HTMLBody, "<script>")
	assert.True(t, filepath.IsAbs(d.Attachment))
	assert.Contains(t, d.TextBody, "Viele Grüße\nMax Mustermann")
}

func TestComposeArg(t *testing.T) {
	arg := ComposeArg(Draft{
		From:       "a@example.com",
		To:         "b@example.com",
		BCC:        "a@example.com",
		Subject:    "Rechnung RE0001",
		HTMLBody:   "<p>it's me</p>",
		Attachment: "/tmp/x.pdf",
	})
	assert.Equal(t, "from='a@example.com',to='b@example.com',bcc='a@example.com',subject='Rechnung RE0001',body='<p>it’s me</p>',attachment='/tmp/x.pdf'", arg)
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "RE0001_20240101_1.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 fake"), 0o644))
	return path
}

func TestRawMessage(t *testing.T) {
	raw, err := RawMessage(Draft{
		From:       "a@example.com",
		To:         "b@example.com",
		Subject:    "Rechnung RE0001 vom 01.01.2024",
		HTMLBody:   "<p>Hallo</p>",
		Attachment: writePDF(t),
	})
	require.NoError(t, err)

	msg := string(raw)
	assert.True(t, strings.HasPrefix(msg, "From: a@example.com\r\n"))
	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, `filename=RE0001_20240101_1.pdf`)
	assert.Contains(t, msg, "application/pdf")
}

func TestRawMessage_MissingAttachment(t *testing.T) {
	_, err := RawMessage(Draft{Attachment: filepath.Join(t.TempDir(), "nope.pdf")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	return &sesv2.SendEmailOutput{}, args.Error(0)
}

func TestSESSender_Send(t *testing.T) {
	client := new(mockSES)
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return *in.FromEmailAddress == "a@example.com" &&
			in.Destination.ToAddresses[0] == "b@example.com" &&
			len(in.Destination.BccAddresses) == 1 &&
			len(in.Content.Raw.Data) > 0
	})).Return(nil).Once()

	sender := NewSESSenderWithClient(client)
	err := sender.Send(context.Background(), Draft{
		From: "a@example.com", To: "b@example.com", BCC: "a@example.com",
		Subject: "x", HTMLBody: "<p>x</p>", Attachment: writePDF(t),
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSESSender_SendError(t *testing.T) {
	client := new(mockSES)
	client.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	err := NewSESSenderWithClient(client).Send(context.Background(), Draft{
		From: "a@example.com", To: "b@example.com", Attachment: writePDF(t),
	})
	assert.ErrorContains(t, err, "throttled")
}
