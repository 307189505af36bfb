package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"hiring-agents/internal/contract"
)

type CandidateStatus string

const (
	StatusRegistered    CandidateStatus = "registered"
	StatusSummarized    CandidateStatus = "summarized"
	StatusSummaryFailed CandidateStatus = "summary_failed"
	StatusInterviewed   CandidateStatus = "interviewed"
	StatusScored        CandidateStatus = "scored"
	StatusScoreFailed   CandidateStatus = "score_failed"
)

// Valid reports whether s is a known status.
func (s CandidateStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusSummarized, StatusSummaryFailed,
		StatusInterviewed, StatusScored, StatusScoreFailed:
		return true
	}
	return false
}

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrEmailTaken        = errors.New("a candidate with this email already exists")
)

type Candidate struct {
	ID               int64           `json:"id"`
	UUID             uuid.UUID       `json:"uuid"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	PasswordHash     string          `json:"-"`
	ResumeText       string          `json:"resume_extracted"`
	ResumeSummary    string          `json:"full_resume,omitempty"`
	ResumeObjectKey  string          `json:"resume_object_key,omitempty"`
	ResumeLinks      []string        `json:"resume_links,omitempty"`
	ConversationText string          `json:"conversation_text,omitempty"`
	Score            *int            `json:"score"`
	Analysis         string          `json:"analysis,omitempty"`
	Status           CandidateStatus `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type NewCandidate struct {
	Name            string
	Email           string
	PasswordHash    string
	ResumeText      string
	ResumeObjectKey string
	ResumeLinks     []string
}

// Store defines persistence contract for candidate records.
type Store interface {
	CreateCandidate(ctx context.Context, c NewCandidate) (Candidate, error)
	GetCandidate(ctx context.Context, id int64) (Candidate, error)
	GetCandidateByEmail(ctx context.Context, email string) (Candidate, error)
	// ListCandidates returns all candidates, or only those in one of statuses when given.
	ListCandidates(ctx context.Context, statuses []CandidateStatus) ([]Candidate, error)
	SaveSummary(ctx context.Context, id int64, summary string) error
	SaveConversation(ctx context.Context, id int64, conversation string) error
	// SaveScore persists a validated score record and marks the candidate scored.
	SaveScore(ctx context.Context, id int64, rec contract.ScoreRecord) error
	UpdateStatus(ctx context.Context, id int64, status CandidateStatus) error
	// ListPendingScores returns interviewed candidates that have a transcript but no score.
	ListPendingScores(ctx context.Context, limit int) ([]Candidate, error)
}
