package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
)

// Storage is a map-backed stand-in for the Postgres repository. It keeps
// the same contract: ids assigned on insert, unique usernames, owner
// predicates on task reads/writes, cascade on user deletion.
type Storage struct {
	mu         sync.RWMutex
	users      map[int64]models.User
	tasks      map[int64]models.Task
	nextUserID int64
	nextTaskID int64
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[int64]models.User),
		tasks: make(map[int64]models.Task),
	}
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return errors.ErrUserAlreadyExists
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[id]; !exists {
		return errors.ErrUserNotFound
	}
	for otherID, existing := range s.users {
		if otherID != id && existing.Username == user.Username {
			return errors.ErrUserAlreadyExists
		}
	}
	user.ID = id
	s.users[id] = *user
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[id]; !exists {
		return errors.ErrUserNotFound
	}
	delete(s.users, id)
	for taskID, task := range s.tasks {
		if task.UserID == id {
			delete(s.tasks, taskID)
		}
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	task.ID = s.nextTaskID
	s.tasks[task.ID] = *task
	return nil
}

func (s *Storage) GetTask(ctx context.Context, taskID, ownerID int64) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, exists := s.tasks[taskID]
	if !exists || task.UserID != ownerID {
		return nil, errors.ErrTaskNotFound
	}
	return &task, nil
}

func (s *Storage) GetTasks(ctx context.Context, ownerID int64, status models.TaskStatus, offset, limit int) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID != ownerID {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	if offset > 0 {
		if offset >= len(tasks) {
			return []models.Task{}, nil
		}
		tasks = tasks[offset:]
	}
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskID, ownerID int64, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.tasks[taskID]
	if !exists || existing.UserID != ownerID {
		return errors.ErrTaskNotFound
	}
	task.ID = taskID
	task.UserID = existing.UserID
	s.tasks[taskID] = *task
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, taskID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.tasks[taskID]
	if !exists || existing.UserID != ownerID {
		return errors.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}
