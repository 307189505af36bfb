package main

import (
	"errors"
	"net/http"
	"strings"

	"hiring-agents/internal/app"
	"hiring-agents/internal/auth"
	"hiring-agents/internal/contract"
	"hiring-agents/internal/httputil"
	"hiring-agents/internal/prompt"
	"hiring-agents/internal/queue"
	"hiring-agents/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type conversationRequest struct {
	ConversationText string `json:"conversation_text" validate:"required"`
}

type scoreRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// interviewerPrompt binds the interviewer instructions for c. It is empty until
// the resume summary exists.
func interviewerPrompt(c store.Candidate) (string, error) {
	if strings.TrimSpace(c.ResumeSummary) == "" {
		return "", nil
	}
	b, err := prompt.Interviewer.Bind(map[string]string{
		prompt.KeyQuestions:     prompt.FormatQuestions(prompt.InterviewQuestions),
		prompt.KeyResumeSummary: c.ResumeSummary,
	})
	if err != nil {
		return "", err
	}
	return b.Text(), nil
}

func loginHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		c, err := deps.Store.GetCandidateByEmail(r.Context(), req.Email)
		if errors.Is(err, store.ErrCandidateNotFound) {
			err = auth.ErrInvalidCredentials
		}
		if err == nil {
			err = auth.CheckPassword(c.PasswordHash, req.Password)
		}
		if err != nil {
			fail(deps.Log, w, "login failed", err)
			return
		}
		instructions, err := interviewerPrompt(c)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to build interviewer prompt", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"candidate_id":       c.ID,
			"name":               c.Name,
			"status":             c.Status,
			"interviewer_prompt": instructions,
		})
	}
}

func interviewHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := candidateID(w, r, deps)
		if !ok {
			return
		}
		log := deps.Log.With("candidate_id", id)
		c, err := deps.Store.GetCandidate(r.Context(), id)
		if err != nil {
			fail(log, w, "failed to load candidate", err)
			return
		}
		instructions, err := interviewerPrompt(c)
		if err != nil {
			httputil.Fail(log, w, "failed to build interviewer prompt", err, http.StatusInternalServerError)
			return
		}
		if instructions == "" {
			httputil.Fail(log, w, "resume summary not ready", nil, http.StatusConflict)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"candidate_id": c.ID,
			"instructions": instructions,
			"questions":    prompt.InterviewQuestions,
		})
	}
}

func conversationHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := candidateID(w, r, deps)
		if !ok {
			return
		}
		log := deps.Log.With("candidate_id", id)
		var req conversationRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(log, w, err)
			return
		}
		if strings.TrimSpace(req.ConversationText) == "" {
			httputil.Fail(log, w, "conversation_text must not be blank", nil, http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		if err := deps.Store.SaveConversation(ctx, id, req.ConversationText); err != nil {
			fail(log, w, "failed to save conversation", err)
			return
		}
		// A missed enqueue is picked up by the scorer's pending sweep.
		if err := enqueue(ctx, deps, queue.TaskTypeScore, queue.ScorePayload{CandidateID: id}); err != nil {
			log.Warn("failed to enqueue score; leaving for sweep", "err", err)
		}
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"candidate_id": id,
			"status":       store.StatusInterviewed,
		})
	}
}

// scoreConversationHandler scores a stored transcript synchronously.
func scoreConversationHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		ctx := r.Context()
		c, err := deps.Store.GetCandidateByEmail(ctx, req.Email)
		if err != nil {
			fail(deps.Log, w, "failed to load candidate", err)
			return
		}
		log := deps.Log.With("candidate_id", c.ID)
		if strings.TrimSpace(c.ConversationText) == "" {
			httputil.Fail(log, w, "no conversation found for this candidate", nil, http.StatusBadRequest)
			return
		}

		rec, err := deps.Pipeline.Score(ctx, c.ConversationText)
		if err != nil {
			if contract.IsViolation(err) {
				if upErr := deps.Store.UpdateStatus(ctx, c.ID, store.StatusScoreFailed); upErr != nil {
					log.Error("failed to mark score failed", "err", upErr)
				}
			}
			fail(log, w, "failed to score conversation", err)
			return
		}
		if err := deps.Store.SaveScore(ctx, c.ID, rec); err != nil {
			fail(log, w, "failed to save score", err)
			return
		}
		log.Info("conversation scored", "score", rec.Score())
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"score":    rec.Score(),
			"analysis": rec.Analysis(),
		})
	}
}
