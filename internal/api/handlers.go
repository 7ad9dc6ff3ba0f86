package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/an0763229796-cpu/AlphaDrop/internal/apperr"
	"github.com/an0763229796-cpu/AlphaDrop/internal/extract"
	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
	"github.com/an0763229796-cpu/AlphaDrop/internal/research"
	"github.com/an0763229796-cpu/AlphaDrop/internal/tracker"
)

// Handler holds API route handlers.
type Handler struct {
	research *research.Service
	tracker  *tracker.Service
}

// NewHandler creates a new Handler.
func NewHandler(res *research.Service, tr *tracker.Service) *Handler {
	return &Handler{research: res, tracker: tr}
}

// writeResearchError maps research failures to API status codes. Any
// unparseable model output is 422 with the offending snippet, and the
// segment name when the multi-segment path failed; everything else is a
// provider problem and maps to 502.
func writeResearchError(w http.ResponseWriter, op string, err error) {
	var agg *research.AggregationError
	if errors.As(err, &agg) {
		resp := errorBody("aggregation failed: model returned unparseable output")
		resp.Segment = agg.Segment
		resp.Snippet = agg.Snippet
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	var pe *extract.ParseError
	if errors.As(err, &pe) {
		resp := errorBody("model returned unparseable output")
		resp.Snippet = pe.Snippet
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusBadGateway, errorBody("research provider failed"))
}

// Analyze handles POST /api/analyze.
//
//	@Summary		Run a full deep-dive analysis for a project
//	@Tags			research
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResearchRequest	true	"Project to analyze"
//	@Success		200		{object}	models.ProjectAnalysis
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/analyze [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeResearchRequest(w, r)
	if !ok {
		return
	}
	analysis, err := h.research.GetAnalysis(r.Context(), req.Name, req.Refresh)
	if err != nil {
		writeResearchError(w, "analyze", err)
		return
	}
	if err := h.tracker.Record(r.Context(), analysis.ProjectName, analysis.Verdict.Score); err != nil {
		slog.Warn("record search failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Scan handles POST /api/scan.
//
//	@Summary		Run a lightweight quick scan for a project
//	@Tags			research
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResearchRequest	true	"Project to scan"
//	@Success		200		{object}	models.QuickScan
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scan [post]
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeResearchRequest(w, r)
	if !ok {
		return
	}
	scan, err := h.research.QuickScan(r.Context(), req.Name, req.Refresh)
	if err != nil {
		writeResearchError(w, "scan", err)
		return
	}
	if err := h.tracker.Record(r.Context(), scan.ProjectName, scan.Score); err != nil {
		slog.Warn("record search failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, scan)
}

// Funding handles POST /api/funding.
//
//	@Summary		Build a funding and investor report for a project
//	@Tags			research
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FundingRequest	true	"Project to report on"
//	@Success		200		{object}	models.CryptoRankReport
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/funding [post]
func (h *Handler) Funding(w http.ResponseWriter, r *http.Request) {
	var req FundingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	report, err := h.research.FundingReport(r.Context(), req.Name)
	if err != nil {
		writeResearchError(w, "funding", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Evaluate handles POST /api/discovery/evaluate.
//
//	@Summary		Screen a batch of candidate projects
//	@Tags			discovery
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EvaluateRequest	true	"Candidates to screen"
//	@Success		200		{object}	EvaluateResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/discovery/evaluate [post]
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.Candidates) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("candidates are required"))
		return
	}
	results := h.research.BatchEvaluate(r.Context(), req.Candidates)
	writeJSON(w, http.StatusOK, EvaluateResponse{Results: results})
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List tracked projects
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	ProjectListResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.tracker.List(r.Context())
	if err != nil {
		slog.Error("list projects failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects, Total: len(projects)})
}

// GetProject handles GET /api/projects/{id}.
//
//	@Summary		Get a tracked project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id"
//	@Success		200	{object}	models.StoredProject
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.tracker.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeTrackerError(w, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// SaveProject handles POST /api/projects and PUT /api/projects/{id}.
//
//	@Summary		Create or replace a tracked project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.StoredProject	true	"Project to save"
//	@Success		200		{object}	models.StoredProject
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var project models.StoredProject
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&project); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		project.ID = id
	}
	created := project.ID == ""
	saved, err := h.tracker.Save(r.Context(), project)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

// DeleteProject handles DELETE /api/projects/{id}.
//
//	@Summary		Remove a tracked project
//	@Tags			projects
//	@Param			id	path	string	true	"Project id"
//	@Success		204	"Project deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeTrackerError(w, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachAnalysis handles POST /api/projects/{id}/analysis. It runs (or
// fetches from cache) a full analysis for the project's name and embeds
// the snapshot, re-deriving the tier from the verdict score.
//
//	@Summary		Attach a fresh analysis snapshot to a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project id"
//	@Param			body	body		ResearchRequest	false	"Optional refresh flag"
//	@Success		200		{object}	models.StoredProject
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/analysis [post]
func (h *Handler) AttachAnalysis(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	id := chi.URLParam(r, "id")
	project, err := h.tracker.Get(r.Context(), id)
	if err != nil {
		writeTrackerError(w, "get project", err)
		return
	}
	analysis, err := h.research.GetAnalysis(r.Context(), project.Name, req.Refresh)
	if err != nil {
		writeResearchError(w, "attach analysis", err)
		return
	}
	updated, err := h.tracker.AttachAnalysis(r.Context(), id, analysis)
	if err != nil {
		writeTrackerError(w, "attach analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AttachFunding handles POST /api/projects/{id}/funding.
//
//	@Summary		Attach a fresh funding report to a project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id"
//	@Success		200	{object}	models.StoredProject
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/funding [post]
func (h *Handler) AttachFunding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	project, err := h.tracker.Get(r.Context(), id)
	if err != nil {
		writeTrackerError(w, "get project", err)
		return
	}
	report, err := h.research.FundingReport(r.Context(), project.Name)
	if err != nil {
		writeResearchError(w, "attach funding", err)
		return
	}
	updated, err := h.tracker.AttachFundingReport(r.Context(), id, report)
	if err != nil {
		writeTrackerError(w, "attach funding", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AddTask handles POST /api/projects/{id}/tasks.
//
//	@Summary		Add a farming task to a project
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Project id"
//	@Param			body	body		TaskRequest	true	"Task to add"
//	@Success		200		{object}	models.StoredProject
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks [post]
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	project, err := h.tracker.AddTask(r.Context(), chi.URLParam(r, "id"), req.Title, req.Priority)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// SetTaskStatus handles PUT /api/projects/{id}/tasks/{taskID}.
//
//	@Summary		Move a farming task between statuses
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project id"
//	@Param			taskID	path		string				true	"Task id"
//	@Param			body	body		TaskStatusRequest	true	"New status"
//	@Success		200		{object}	models.StoredProject
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks/{taskID} [put]
func (h *Handler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req TaskStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	project, err := h.tracker.SetTaskStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// RemoveTask handles DELETE /api/projects/{id}/tasks/{taskID}.
//
//	@Summary		Remove a farming task from a project
//	@Tags			tasks
//	@Produce		json
//	@Param			id		path		string	true	"Project id"
//	@Param			taskID	path		string	true	"Task id"
//	@Success		200		{object}	models.StoredProject
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks/{taskID} [delete]
func (h *Handler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	project, err := h.tracker.RemoveTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeTrackerError(w, "remove task", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// History handles GET /api/history.
//
//	@Summary		List prior search queries, newest first
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.tracker.History(r.Context())
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{History: history})
}

func decodeResearchRequest(w http.ResponseWriter, r *http.Request) (ResearchRequest, bool) {
	var req ResearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return req, false
	}
	return req, true
}

func writeTrackerError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
