package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Sender delivers a draft.
type Sender interface {
	Send(ctx context.Context, d Draft) error
}

// SESClient is the subset of the SES v2 API used for delivery.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client SESClient
}

// NewSESSender creates an SES-backed Sender for region.
func NewSESSender(ctx context.Context, region string) (Sender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg)), nil
}

// NewSESSenderWithClient wraps an existing client.
func NewSESSenderWithClient(client SESClient) Sender {
	return &sesSender{client: client}
}

func (s *sesSender) Send(ctx context.Context, d Draft) error {
	raw, err := RawMessage(d)
	if err != nil {
		return err
	}
	destinations := []string{d.To}
	if d.BCC != "" {
		destinations = append(destinations, d.BCC)
	}
	_, err = s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &d.From,
		Destination:      &types.Destination{ToAddresses: []string{d.To}, BccAddresses: bccList(d.BCC)},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail to %v: %w", destinations, err)
	}
	return nil
}

func bccList(bcc string) []string {
	if bcc == "" {
		return nil
	}
	return []string{bcc}
}

// RawMessage encodes the draft as a multipart MIME message with the PDF attached.
func RawMessage(d Draft) ([]byte, error) {
	pdf, err := os.ReadFile(d.Attachment)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", d.From)
	fmt.Fprintf(&buf, "To: %s\r\n", d.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", d.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	alt := textproto.MIMEHeader{}
	alt.Set("Content-Type", "text/html; charset=utf-8")
	alt.Set("Content-Transfer-Encoding", "base64")
	part, err := mw.CreatePart(alt)
	if err != nil {
		return nil, fmt.Errorf("writing body: %w", err)
	}
	if err := writeBase64(part, []byte(d.HTMLBody)); err != nil {
		return nil, err
	}

	name := filepath.Base(d.Attachment)
	att := textproto.MIMEHeader{}
	att.Set("Content-Type", "application/pdf")
	att.Set("Content-Transfer-Encoding", "base64")
	att.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	part, err = mw.CreatePart(att)
	if err != nil {
		return nil, fmt.Errorf("writing attachment: %w", err)
	}
	if err := writeBase64(part, pdf); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", enc[:76]); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", enc)
	return err
}
