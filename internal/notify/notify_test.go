package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestCredentialsMessage(t *testing.T) {
	c := Credentials{Name: "Ada", Email: "ada@example.com", Password: "x7!Kq2#pZa"}

	msg, err := credentialsMessage("hiring@example.com", "https://interview.example.com", c)
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, rcpts)
	assert.Equal(t, []string{credentialsSubject}, msg.GetGenHeader(mail.HeaderSubject))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "Hello Ada,")
	assert.Contains(t, body, "Interview link: https://interview.example.com")
	assert.Contains(t, body, "Email: ada@example.com")
}

func TestCredentialsMessageInvalidAddress(t *testing.T) {
	_, err := credentialsMessage("hiring@example.com", "", Credentials{Email: "not an address"})
	assert.Error(t, err)

	_, err = credentialsMessage("", "", Credentials{Email: "ada@example.com"})
	assert.Error(t, err)
}

func TestNewSMTPSenderRequiresSender(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.ErrorIs(t, err, ErrNotConfigured)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "hiring@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
