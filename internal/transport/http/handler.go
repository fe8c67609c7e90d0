package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cert-quiz-service/internal/app"
	"cert-quiz-service/internal/domain"
)

// userIDHeader carries the caller identity injected by the upstream gateway
// after authentication. It is never taken from the request payload.
const userIDHeader = "X-User-Id"

type contextKey string

const userIDKey contextKey = "userID"

// Handler exposes the quiz use cases over JSON endpoints.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register wires the handler's routes into the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/quiz", h.withUser(h.handleSelect))
	mux.HandleFunc("/api/quiz/score", h.withUser(h.handleScore))
	mux.HandleFunc("/api/progress", h.withUser(h.handleProgress))
}

// withUser extracts the gateway-injected identity into the request context.
func (h *Handler) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get(userIDHeader); userID != "" {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next(w, r)
	}
}

// UserID returns the authenticated caller from the request context.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

type selectRequest struct {
	ExamType      string   `json:"examType"`
	QuestionCount int      `json:"questionCount"`
	Domains       []string `json:"domains,omitempty"`
}

type selectResponse struct {
	ExamType      string                  `json:"examType"`
	QuestionCount int                     `json:"questionCount"`
	Questions     []domain.PublicQuestion `json:"questions"`
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	questions, err := h.service.SelectQuestions(r.Context(), req.ExamType, req.QuestionCount, req.Domains)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectResponse{
		ExamType:      req.ExamType,
		QuestionCount: len(questions),
		Questions:     questions,
	})
}

type scoreRequest struct {
	// UserID is accepted for wire compatibility but ignored; the caller
	// identity always comes from the gateway-injected header.
	UserID      string              `json:"userId,omitempty"`
	ExamType    string              `json:"examType"`
	QuestionIDs []string            `json:"questionIds"`
	UserAnswers map[string][]string `json:"userAnswers"`
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.service.ScoreQuiz(r.Context(), userID, req.ExamType, req.QuestionIDs, req.UserAnswers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	progress, err := h.service.Progress(r.Context(), userID, r.URL.Query().Get("examType"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeServiceError translates domain errors into stable status codes. No
// internal error detail crosses the boundary.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownExamType),
		errors.Is(err, domain.ErrInvalidQuestionCount),
		errors.Is(err, domain.ErrUnknownDomain),
		errors.Is(err, domain.ErrEmptySubmission),
		errors.Is(err, domain.ErrMissingUser):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoQuestions),
		errors.Is(err, domain.ErrQuestionSetMismatch),
		errors.Is(err, domain.ErrProgressNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error, try again later")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
