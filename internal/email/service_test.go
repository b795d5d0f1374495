package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type sent struct {
	to   []string
	body string
}

type fakeSender struct {
	sent   []sent
	failTo string
	closed bool
}

func (f *fakeSender) Send(_ string, to []string, msg io.WriterTo) error {
	if len(to) > 0 && to[0] == f.failTo {
		return errors.New("mailbox unavailable")
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	f.sent = append(f.sent, sent{to: to, body: buf.String()})
	return nil
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

func newTestService(f *fakeSender) *SMTPService {
	return &SMTPService{
		from: "noreply@example.com",
		dial: func() (gomail.SendCloser, error) { return f, nil },
	}
}

func TestSendWelcome(t *testing.T) {
	f := &fakeSender{}
	svc := newTestService(f)

	require.NoError(t, svc.SendWelcome(context.Background(), "ada@example.com", "Ada"))
	require.Len(t, f.sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, f.sent[0].to)
	assert.Contains(t, f.sent[0].body, "Hi Ada")
	assert.True(t, f.closed)
}

func TestSendAnnouncement_ContinuesPastFailures(t *testing.T) {
	f := &fakeSender{failTo: "b@example.com"}
	svc := newTestService(f)

	n, err := svc.SendAnnouncement(context.Background(), []string{"a@example.com", "b@example.com", "c@example.com"}, "Hello", "Body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b@example.com")
	assert.Equal(t, 2, n)
	assert.Len(t, f.sent, 2)
}

func TestSendAnnouncement_NoRecipients(t *testing.T) {
	svc := &SMTPService{dial: func() (gomail.SendCloser, error) {
		t.Fatal("should not dial")
		return nil, nil
	}}

	n, err := svc.SendAnnouncement(context.Background(), nil, "Hello", "Body")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDialFailure(t *testing.T) {
	svc := &SMTPService{dial: func() (gomail.SendCloser, error) { return nil, errors.New("refused") }}

	err := svc.SendWelcome(context.Background(), "ada@example.com", "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dial smtp")
}
