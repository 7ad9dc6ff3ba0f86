package api

import (
	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
)

// ResearchRequest is the request body for analyze and scan endpoints.
type ResearchRequest struct {
	Name    string `json:"name" example:"Hyperlane" validate:"required"`
	Refresh bool   `json:"refresh,omitempty"`
}

// FundingRequest is the request body for the funding report endpoint.
type FundingRequest struct {
	Name string `json:"name" example:"Hyperlane" validate:"required"`
}

// EvaluateRequest is the request body for batch candidate screening.
type EvaluateRequest struct {
	Candidates []models.EvaluationCandidate `json:"candidates" validate:"required"`
}

// EvaluateResponse wraps batch screening results.
type EvaluateResponse struct {
	Results []models.EvaluationResult `json:"results" validate:"required"`
}

// ProjectListResponse wraps the tracked project list.
type ProjectListResponse struct {
	Projects []models.StoredProject `json:"projects" validate:"required"`
	Total    int                    `json:"total" example:"3" validate:"required"`
}

// TaskRequest is the request body for adding a farming task.
type TaskRequest struct {
	Title    string `json:"title" example:"Bridge funds to testnet" validate:"required"`
	Priority string `json:"priority,omitempty" example:"high"`
}

// TaskStatusRequest is the request body for moving a farming task.
type TaskStatusRequest struct {
	Status string `json:"status" example:"done" validate:"required"`
}

// HistoryResponse wraps prior search queries, newest first.
type HistoryResponse struct {
	History []models.SearchHistoryItem `json:"history" validate:"required"`
}
