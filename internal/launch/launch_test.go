package launch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhoffmnn/latex-templates/internal/mail"
)

type recorder struct {
	calls     []string
	available map[string]bool
}

func (r *recorder) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, call)
	for prefix := range r.available {
		if strings.HasPrefix(call, prefix) {
			return nil, nil
		}
	}
	return []byte("not found"), errors.New("exit status 1")
}

func TestOpenViewer(t *testing.T) {
	rec := &recorder{available: map[string]bool{"xdg-open": true}}
	l := NewWithRunner(rec.run, zerolog.Nop())

	require.NoError(t, l.OpenViewer(context.Background(), "out/a.pdf"))
	assert.Equal(t, []string{"xdg-open out/a.pdf"}, rec.calls)
}

func TestMailClient_Native(t *testing.T) {
	rec := &recorder{available: map[string]bool{"thunderbird": true}}
	client, err := NewWithRunner(rec.run, zerolog.Nop()).MailClient(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"thunderbird"}, client)
}

func TestMailClient_Flatpak(t *testing.T) {
	rec := &recorder{available: map[string]bool{"flatpak run org.mozilla.Thunderbird": true}}
	client, err := NewWithRunner(rec.run, zerolog.Nop()).MailClient(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"flatpak", "run", "org.mozilla.Thunderbird"}, client)
	assert.Equal(t, []string{"thunderbird --version", "flatpak run org.mozilla.Thunderbird --version"}, rec.calls)
}

func TestMailClient_Missing(t *testing.T) {
	rec := &recorder{}
	_, err := NewWithRunner(rec.run, zerolog.Nop()).MailClient(context.Background())
	assert.ErrorIs(t, err, ErrNoMailClient)
}

func TestComposeMail(t *testing.T) {
	rec := &recorder{available: map[string]bool{"flatpak run org.mozilla.Thunderbird": true}}
	l := NewWithRunner(rec.run, zerolog.Nop())

	err := l.ComposeMail(context.Background(), mail.Draft{From: "a@x.de", To: "b@x.de", Subject: "s", Attachment: "/a.pdf"})
	require.NoError(t, err)
	last := rec.calls[len(rec.calls)-1]
	assert.True(t, strings.HasPrefix(last, "flatpak run org.mozilla.Thunderbird -compose from='a@x.de',to='b@x.de'"), last)
}
