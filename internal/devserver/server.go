// Package devserver is a local HTTP front end for the two Lambda handlers.
// It accepts raw emails and SNS feedback envelopes over HTTP so the whole
// flow can be exercised without SES.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"wxrmessenger/internal/inbound"
	notify "wxrmessenger/internal/notifications/email"
	"wxrmessenger/internal/types"
)

const (
	maxEmailSize    = 10 << 20
	maxFeedbackSize = 1 << 20
	requestTimeout  = 30 * time.Second
)

// MailSink accepts raw messages for the pipeline to fetch.
type MailSink interface {
	Put(messageID string, raw []byte)
}

// InboundProcessor runs one inbound event.
type InboundProcessor interface {
	Process(ctx context.Context, event events.SimpleEmailEvent) inbound.Outcome
}

// FeedbackApplier applies one parsed feedback notification.
type FeedbackApplier interface {
	Apply(ctx context.Context, n notify.FeedbackNotification) (int, error)
}

// SuppressionLookup reads the ledger.
type SuppressionLookup interface {
	Lookup(ctx context.Context, address string) (types.SuppressionRecord, bool, error)
	IsSuppressed(ctx context.Context, address string) bool
}

// Server wires the handlers onto a chi router.
type Server struct {
	router   *chi.Mux
	mail     MailSink
	inbound  InboundProcessor
	feedback FeedbackApplier
	ledger   SuppressionLookup
	logger   types.Logger
}

// NewServer creates a Server with all routes mounted.
func NewServer(mail MailSink, in InboundProcessor, fb FeedbackApplier, ledger SuppressionLookup, logger types.Logger) *Server {
	if logger == nil {
		logger = types.NopLogger{}
	}
	s := &Server{
		router:   chi.NewRouter(),
		mail:     mail,
		inbound:  in,
		feedback: fb,
		ledger:   ledger,
		logger:   logger,
	}
	s.mountRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) mountRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Timeout(requestTimeout))

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/inbound", s.handleInbound)
	s.router.Post("/feedback", s.handleFeedback)
	s.router.Get("/suppressions/{address}", s.handleSuppression)
}

type inboundResponse struct {
	MessageID string `json:"message_id"`
	Outcome   string `json:"outcome"`
}

type feedbackResponse struct {
	Type                string `json:"type"`
	MessageID           string `json:"message_id,omitempty"`
	SuppressionsWritten int    `json:"suppressions_written"`
}

type suppressionResponse struct {
	Address    string     `json:"address"`
	Until      *time.Time `json:"until,omitempty"`
	Suppressed bool       `json:"suppressed"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleInbound stores the request body as a raw message and runs the
// pipeline on it, as if SES had just received it.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEmailSize))
	if err != nil || len(raw) == 0 {
		writeError(w, types.NewAppError(types.ErrCodeValidationInvalidEvent, "request body must be a raw email", err))
		return
	}

	id := "dev-" + uuid.NewString()
	s.mail.Put(id, raw)
	outcome := s.inbound.Process(r.Context(), inbound.SyntheticEvent(id))

	writeJSON(w, http.StatusOK, inboundResponse{MessageID: id, Outcome: string(outcome)})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFeedbackSize))
	if err != nil {
		writeError(w, types.NewAppError(types.ErrCodeValidationInvalidEvent, "failed to read request body", err))
		return
	}

	n, err := notify.ParseSNSEnvelope(body)
	if err != nil {
		writeError(w, err)
		return
	}

	written, err := s.feedback.Apply(r.Context(), n)
	if err != nil {
		s.logger.Error("feedback not fully applied", "error", err, "written", written)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		Type:                string(n.Type()),
		MessageID:           n.MessageID(),
		SuppressionsWritten: written,
	})
}

func (s *Server) handleSuppression(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	rec, found, err := s.ledger.Lookup(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := suppressionResponse{Address: address}
	if found {
		until := rec.Until.UTC()
		resp.Until = &until
		resp.Suppressed = s.ledger.IsSuppressed(r.Context(), address)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps the error category to a status. Wrapped error text is
// never exposed.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch types.CategoryOf(err) {
	case types.CategoryValidation, types.CategoryParse:
		status = http.StatusBadRequest
	case types.CategoryNotFound:
		status = http.StatusNotFound
	}

	resp := errorResponse{
		Code:    string(types.ErrCodeInternalUnexpected),
		Message: "request failed",
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		resp.Code = string(appErr.Code)
		resp.Message = appErr.Message
	}
	writeJSON(w, status, resp)
}
