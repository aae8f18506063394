package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

type startRunRequest struct {
	Workflow string          `json:"workflow" validate:"required,oneof=kpi insight"`
	Input    json.RawMessage `json:"input" validate:"required"`
}

type runResponse struct {
	ID             string          `json:"id"`
	Workflow       string          `json:"workflow"`
	Status         workflow.Status `json:"status"`
	StepIndex      int             `json:"step_index"`
	Output         json.RawMessage `json:"output,omitempty"`
	SuspendPayload json.RawMessage `json:"suspend_payload,omitempty"`
	Error          string          `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toRunResponse(run *workflow.Run) runResponse {
	resp := runResponse{
		ID:             run.ID,
		Workflow:       run.WorkflowID,
		Status:         run.Status,
		StepIndex:      run.StepIndex,
		SuspendPayload: run.SuspendPayload,
		Error:          run.ErrorMessage,
	}
	if run.Status == workflow.StatusCompleted {
		resp.Output = run.State
	}
	return resp
}

// httpStatus maps workflow errors to HTTP status codes.
func httpStatus(err error) int {
	var (
		ve       *workflow.ValidationError
		unknown  *workflow.UnknownRunError
		notFound *workflow.KpiNotFoundError
		cannot   *workflow.CannotAnswerError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &unknown), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &cannot):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, httpStatus(err), errorResponse{Error: err.Error()})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	run, err := s.engine.Start(r.Context(), req.Workflow, req.Input)
	if err != nil && run == nil {
		s.writeError(w, err)
		return
	}
	// a failed run still carries its record; report it with the run state
	s.writeJSON(w, http.StatusCreated, toRunResponse(run))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponse(run))
}

func (s *Server) handleResumeRun(w http.ResponseWriter, r *http.Request) {
	var resume json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&resume); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	run, err := s.engine.Resume(r.Context(), r.PathValue("id"), resume)
	if err != nil && run == nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponse(run))
}

func (s *Server) handleListKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := s.store.ListKPIs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, kpis)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
