// Package tracker persists the user's tracked projects, farming tasks, and
// search history in the key-value store.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/an0763229796-cpu/AlphaDrop/internal/apperr"
	"github.com/an0763229796-cpu/AlphaDrop/internal/kvstore"
	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
)

// Storage keys. The whole project list lives under one key; reads and
// writes are independent round trips with no transactional guarantee,
// which is acceptable for a single-user tool.
const (
	projectsKey = "projects"
	historyKey  = "search_history"
)

// historyLimit caps the search history length.
const historyLimit = 20

// Service manages tracked projects and search history.
type Service struct {
	store kvstore.Store
	now   func() time.Time
	newID func() string
}

// NewService creates a tracker service over the given store.
func NewService(store kvstore.Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// List returns all tracked projects.
func (s *Service) List(ctx context.Context) ([]models.StoredProject, error) {
	return s.loadProjects(ctx)
}

// Get returns the tracked project with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.StoredProject, error) {
	projects, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Save inserts or replaces a project by id. A project without an id is
// treated as new: it gets a fresh id, an addedAt stamp, and defaults for
// status, tier, and tasks.
func (s *Service) Save(ctx context.Context, project models.StoredProject) (*models.StoredProject, error) {
	if project.ID == "" {
		project.ID = s.newID()
		project.AddedAt = s.now().UnixMilli()
		if project.Status == "" {
			project.Status = models.StatusResearching
		}
		if project.Tier == "" {
			project.Tier = models.TierB
		}
	}
	if project.Tasks == nil {
		project.Tasks = []models.FarmingTask{}
	}
	if err := validateProject(&project); err != nil {
		return nil, fmt.Errorf("tracker: invalid project: %w", err)
	}

	projects, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range projects {
		if projects[i].ID == project.ID {
			projects[i] = project
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, project)
	}
	if err := s.saveProjects(ctx, projects); err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	projects, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	kept := projects[:0]
	found := false
	for _, p := range projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return apperr.ErrNotFound
	}
	return s.saveProjects(ctx, kept)
}

// AttachAnalysis embeds an analysis snapshot into the project and derives
// its tier from the verdict score.
func (s *Service) AttachAnalysis(ctx context.Context, id string, analysis *models.ProjectAnalysis) (*models.StoredProject, error) {
	return s.update(ctx, id, func(p *models.StoredProject) {
		p.Analysis = analysis
		p.Tier = models.TierForScore(analysis.Verdict.Score)
	})
}

// AttachFundingReport embeds a funding report snapshot into the project.
func (s *Service) AttachFundingReport(ctx context.Context, id string, report *models.CryptoRankReport) (*models.StoredProject, error) {
	return s.update(ctx, id, func(p *models.StoredProject) {
		p.FundingReport = report
		if p.Ticker == "" {
			p.Ticker = report.Ticker
		}
	})
}

// AddTask appends a farming task to the project's checklist.
func (s *Service) AddTask(ctx context.Context, projectID, title, priority string) (*models.StoredProject, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("tracker: task title is required")
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if err := validation.Validate(priority,
		validation.In(models.PriorityHigh, models.PriorityMedium, models.PriorityLow)); err != nil {
		return nil, fmt.Errorf("tracker: invalid priority %q: %w", priority, err)
	}

	task := models.FarmingTask{
		ID:       s.newID(),
		Title:    title,
		Status:   models.TaskTodo,
		Priority: priority,
	}
	return s.update(ctx, projectID, func(p *models.StoredProject) {
		p.Tasks = append(p.Tasks, task)
	})
}

// SetTaskStatus moves a task through todo / in-progress / done.
func (s *Service) SetTaskStatus(ctx context.Context, projectID, taskID, status string) (*models.StoredProject, error) {
	if err := validation.Validate(status,
		validation.Required,
		validation.In(models.TaskTodo, models.TaskInProgress, models.TaskDone)); err != nil {
		return nil, fmt.Errorf("tracker: invalid task status %q: %w", status, err)
	}

	var found bool
	project, err := s.update(ctx, projectID, func(p *models.StoredProject) {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				p.Tasks[i].Status = status
				found = true
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	return project, nil
}

// RemoveTask deletes a task from the project's checklist.
func (s *Service) RemoveTask(ctx context.Context, projectID, taskID string) (*models.StoredProject, error) {
	var found bool
	project, err := s.update(ctx, projectID, func(p *models.StoredProject) {
		kept := p.Tasks[:0]
		for _, task := range p.Tasks {
			if task.ID == taskID {
				found = true
				continue
			}
			kept = append(kept, task)
		}
		p.Tasks = kept
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	return project, nil
}

// Record notes a search query in the history: deduplicated by
// case-insensitive query, newest first, capped at historyLimit entries.
func (s *Service) Record(ctx context.Context, query string, score int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}

	kept := make([]models.SearchHistoryItem, 0, len(history)+1)
	kept = append(kept, models.SearchHistoryItem{
		Query:     query,
		Timestamp: s.now().UnixMilli(),
		Score:     score,
	})
	for _, item := range history {
		if strings.EqualFold(item.Query, query) {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) > historyLimit {
		kept = kept[:historyLimit]
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("tracker: encode history: %w", err)
	}
	if err := s.store.Set(ctx, historyKey, raw); err != nil {
		return fmt.Errorf("tracker: save history: %w", err)
	}
	return nil
}

// History returns prior queries, newest first.
func (s *Service) History(ctx context.Context) ([]models.SearchHistoryItem, error) {
	return s.loadHistory(ctx)
}

// update loads the project list, applies fn to the matching project, and
// persists the list. Read-modify-write is not atomic across processes.
func (s *Service) update(ctx context.Context, id string, fn func(*models.StoredProject)) (*models.StoredProject, error) {
	projects, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			fn(&projects[i])
			if err := s.saveProjects(ctx, projects); err != nil {
				return nil, err
			}
			return &projects[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *Service) loadProjects(ctx context.Context) ([]models.StoredProject, error) {
	raw, err := s.store.Get(ctx, projectsKey)
	if errors.Is(err, apperr.ErrNotFound) {
		return []models.StoredProject{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracker: load projects: %w", err)
	}
	var projects []models.StoredProject
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("tracker: decode projects: %w", err)
	}
	return projects, nil
}

func (s *Service) saveProjects(ctx context.Context, projects []models.StoredProject) error {
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("tracker: encode projects: %w", err)
	}
	if err := s.store.Set(ctx, projectsKey, raw); err != nil {
		return fmt.Errorf("tracker: save projects: %w", err)
	}
	return nil
}

func (s *Service) loadHistory(ctx context.Context) ([]models.SearchHistoryItem, error) {
	raw, err := s.store.Get(ctx, historyKey)
	if errors.Is(err, apperr.ErrNotFound) {
		return []models.SearchHistoryItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracker: load history: %w", err)
	}
	var history []models.SearchHistoryItem
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("tracker: decode history: %w", err)
	}
	return history, nil
}

func validateProject(p *models.StoredProject) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Status, validation.Required,
			validation.In(models.StatusResearching, models.StatusFarming, models.StatusClaimed, models.StatusIgnored)),
		validation.Field(&p.Tier, validation.Required,
			validation.In(models.TierS, models.TierA, models.TierB, models.TierC)),
	)
}
