package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hiring-agents/internal/app"
	"hiring-agents/internal/notify"
	"hiring-agents/internal/queue"
)

func newTestDeps(m notify.Sender) app.Deps {
	return app.Deps{
		Mailer: m,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleNotify(t *testing.T) {
	payload := queue.NotifyPayload{CandidateID: 3, Name: "Ada", Email: "ada@example.com", Password: "Secret123!"}
	creds := notify.Credentials{Name: "Ada", Email: "ada@example.com", Password: "Secret123!"}

	tests := []struct {
		name          string
		payload       queue.NotifyPayload
		setup         func(*notify.MockSender)
		wantErr       bool
		wantPermanent bool
	}{
		{
			name:    "sends credentials",
			payload: payload,
			setup: func(m *notify.MockSender) {
				m.On("SendCredentials", mock.Anything, creds).Return(nil).Once()
			},
		},
		{
			name:    "smtp failure is retried",
			payload: payload,
			setup: func(m *notify.MockSender) {
				m.On("SendCredentials", mock.Anything, creds).Return(errors.New("connection refused")).Once()
			},
			wantErr: true,
		},
		{
			name:          "incomplete payload is permanent",
			payload:       queue.NotifyPayload{CandidateID: 3, Email: "ada@example.com"},
			wantErr:       true,
			wantPermanent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSender := new(notify.MockSender)
			if tt.setup != nil {
				tt.setup(mockSender)
			}

			err := handleNotify(context.Background(), newTestDeps(mockSender), tt.payload)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPermanent, queue.IsPermanent(err))
			mockSender.AssertExpectations(t)
		})
	}
}
