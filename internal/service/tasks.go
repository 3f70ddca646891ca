package service

import (
	"context"
	"log"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
)

// TaskRepository is the persistence collaborator for task records. Read,
// update and delete carry the owner predicate into the query, so a task
// owned by someone else is a no-row result.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, taskID, ownerID int64) (*models.Task, error)
	GetTasks(ctx context.Context, ownerID int64, status models.TaskStatus, offset, limit int) ([]models.Task, error)
	UpdateTask(ctx context.Context, taskID, ownerID int64, task *models.Task) error
	DeleteTask(ctx context.Context, taskID, ownerID int64) error
}

// TaskService owns task records and enforces per-owner scoping on every
// operation. The owner is always the authenticated caller, never request
// payload data.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, req models.CreateTaskRequest) (*models.Task, error) {
	status := models.StatusNew
	if req.Status != "" {
		status = models.TaskStatus(req.Status)
		if !status.Valid() {
			return nil, errors.ErrInvalidStatus
		}
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		UserID:      ownerID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	log.Println("[SUCCESS] task created:", task.ID)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, taskID, ownerID int64) (*models.Task, error) {
	return s.repo.GetTask(ctx, taskID, ownerID)
}

// List returns every task owned by the caller, optionally filtered by status.
func (s *TaskService) List(ctx context.Context, ownerID int64, status models.TaskStatus) ([]models.Task, error) {
	if status != "" && !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	return s.repo.GetTasks(ctx, ownerID, status, 0, 0)
}

// ListPage is List with 1-based pagination applied after the status filter.
func (s *TaskService) ListPage(ctx context.Context, ownerID int64, status models.TaskStatus, page, limit int) ([]models.Task, error) {
	if page < 1 || limit < 1 {
		return nil, errors.ErrInvalidArgument
	}
	if status != "" && !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	return s.repo.GetTasks(ctx, ownerID, status, (page-1)*limit, limit)
}

// Update applies a partial update to a task the caller owns. Status moves
// freely between states; ownership is the only guard.
func (s *TaskService) Update(ctx context.Context, taskID, ownerID int64, req models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Status != "" && !models.TaskStatus(req.Status).Valid() {
		return nil, errors.ErrInvalidStatus
	}
	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}

	if err := s.repo.UpdateTask(ctx, taskID, ownerID, task); err != nil {
		return nil, err
	}
	log.Println("[SUCCESS] task updated:", taskID)
	return task, nil
}

// MarkCompleted moves a task to Completed regardless of its current state.
// Completing an already completed task is a no-op.
func (s *TaskService) MarkCompleted(ctx context.Context, taskID, ownerID int64) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.StatusCompleted {
		return task, nil
	}

	task.Status = models.StatusCompleted
	if err := s.repo.UpdateTask(ctx, taskID, ownerID, task); err != nil {
		return nil, err
	}
	log.Println("[SUCCESS] task completed:", taskID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, ownerID int64) error {
	if err := s.repo.DeleteTask(ctx, taskID, ownerID); err != nil {
		return err
	}
	log.Println("[SUCCESS] task deleted:", taskID)
	return nil
}
