package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hiring-agents/internal/app"
	"hiring-agents/internal/auth"
	"hiring-agents/internal/blob"
	"hiring-agents/internal/extract"
	"hiring-agents/internal/httputil"
	"hiring-agents/internal/queue"
	"hiring-agents/internal/store"
)

const (
	enqueueAttempts = 3
	enqueueBackoff  = 200 * time.Millisecond
)

type createCandidateRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	ResumeText string `json:"resume_extracted" validate:"required"`
}

type uploadForm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type registration struct {
	Name            string
	Email           string
	ResumeText      string
	ResumeObjectKey string
	ResumeLinks     []string
}

func createCandidateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCandidateRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if strings.TrimSpace(req.ResumeText) == "" {
			httputil.Fail(deps.Log, w, "resume_extracted must not be blank", nil, http.StatusBadRequest)
			return
		}
		register(w, r, deps, registration{
			Name:        req.Name,
			Email:       req.Email,
			ResumeText:  req.ResumeText,
			ResumeLinks: extract.Links(req.ResumeText),
		})
	}
}

func uploadCandidateHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)
		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			httputil.Fail(deps.Log, w, "invalid multipart form", err, http.StatusBadRequest)
			return
		}

		form := uploadForm{Name: r.FormValue("name"), Email: r.FormValue("email")}
		if err := httputil.Validator.Struct(form); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")
		format, err := extract.Detect(header.Filename, contentType)
		if err != nil {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF, DOCX, HTML and TXT allowed)", err, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		doc, err := extract.Resume(format, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to extract resume text", err, http.StatusBadRequest)
			return
		}
		if doc.Text == "" {
			httputil.Fail(deps.Log, w, "no text could be extracted from the resume", nil, http.StatusBadRequest)
			return
		}

		key := blob.ResumeKey(header.Filename, time.Now())
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := deps.Blob.Put(r.Context(), key, contentType, content); err != nil {
			httputil.Fail(deps.Log, w, "failed to archive resume", err, http.StatusInternalServerError)
			return
		}
		if _, ok := deps.Blob.(*blob.NoOpStore); ok {
			key = ""
		}

		register(w, r, deps, registration{
			Name:            form.Name,
			Email:           form.Email,
			ResumeText:      doc.Text,
			ResumeObjectKey: key,
			ResumeLinks:     doc.Links,
		})
	}
}

// register creates the candidate with a generated password and queues the
// credential email and resume summary.
func register(w http.ResponseWriter, r *http.Request, deps app.Deps, reg registration) {
	ctx := r.Context()

	password, err := auth.GeneratePassword(auth.PasswordLength)
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to generate password", err, http.StatusInternalServerError)
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to generate password", err, http.StatusInternalServerError)
		return
	}

	c, err := deps.Store.CreateCandidate(ctx, store.NewCandidate{
		Name:            strings.TrimSpace(reg.Name),
		Email:           reg.Email,
		PasswordHash:    hash,
		ResumeText:      reg.ResumeText,
		ResumeObjectKey: reg.ResumeObjectKey,
		ResumeLinks:     reg.ResumeLinks,
	})
	if err != nil {
		fail(deps.Log, w, "failed to create candidate", err)
		return
	}
	log := deps.Log.With("candidate_id", c.ID)

	if err := enqueue(ctx, deps, queue.TaskTypeSummarize, queue.SummarizePayload{CandidateID: c.ID}); err != nil {
		if upErr := deps.Store.UpdateStatus(ctx, c.ID, store.StatusSummaryFailed); upErr != nil {
			log.Error("failed to mark summary failed", "err", upErr)
		}
		httputil.Fail(log, w, "failed to enqueue resume summary; please retry", err, http.StatusInternalServerError)
		return
	}
	notify := queue.NotifyPayload{CandidateID: c.ID, Name: c.Name, Email: c.Email, Password: password}
	if err := enqueue(ctx, deps, queue.TaskTypeNotify, notify); err != nil {
		// The password is still returned below.
		log.Warn("failed to enqueue credentials email", "err", err)
	}

	log.Info("candidate registered")
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":            "Candidate added successfully",
		"candidate_id":       c.ID,
		"generated_password": password,
	})
}

func enqueue(ctx context.Context, deps app.Deps, t queue.TaskType, payload any) error {
	task, err := queue.NewTask(t, payload)
	if err != nil {
		return err
	}
	return queue.EnqueueWithRetry(ctx, deps.Queue, task, enqueueAttempts, enqueueBackoff)
}

func listCandidatesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var statuses []store.CandidateStatus
		for _, s := range r.URL.Query()["status"] {
			status := store.CandidateStatus(s)
			if !status.Valid() {
				httputil.Fail(deps.Log, w, fmt.Sprintf("unknown status %q", s), nil, http.StatusBadRequest)
				return
			}
			statuses = append(statuses, status)
		}
		candidates, err := deps.Store.ListCandidates(r.Context(), statuses)
		if err != nil {
			fail(deps.Log, w, "failed to list candidates", err)
			return
		}
		if candidates == nil {
			candidates = []store.Candidate{}
		}
		httputil.WriteJSON(w, http.StatusOK, candidates)
	}
}

func getCandidateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := candidateID(w, r, deps)
		if !ok {
			return
		}
		c, err := deps.Store.GetCandidate(r.Context(), id)
		if err != nil {
			fail(deps.Log.With("candidate_id", id), w, "failed to load candidate", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, c)
	}
}

// resumeHandler streams back the archived resume file.
func resumeHandler(deps app.Deps) http.HandlerFunc {
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
		if c.ResumeObjectKey == "" {
			httputil.Fail(log, w, "no archived resume for this candidate", nil, http.StatusNotFound)
			return
		}
		obj, err := deps.Blob.Get(r.Context(), c.ResumeObjectKey)
		if err != nil {
			fail(log, w, "failed to fetch resume", err)
			return
		}
		contentType := obj.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, path.Base(c.ResumeObjectKey)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(obj.Data); err != nil {
			log.Warn("resume write failed", "err", err)
		}
	}
}

// candidateID parses the {id} URL parameter, writing a 400 when it is invalid.
func candidateID(w http.ResponseWriter, r *http.Request, deps app.Deps) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = errors.New("id must be positive")
		}
		httputil.Fail(deps.Log, w, "invalid candidate id", err, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
