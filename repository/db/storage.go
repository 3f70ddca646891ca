package db

import (
	"context"
	stderrors "errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
)

const queryTimeout = 15 * time.Second

// uniqueViolation is the Postgres error code for a unique index violation,
// the backstop for the username pre-check on registration.
const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool

	qCreateUser        string
	qGetUserByID       string
	qGetUserByUsername string
	qUpdateUser        string
	qDeleteUser        string
	qCreateTask        string
	qGetTask           string
	qGetTasks          string
	qGetTasksPage      string
	qUpdateTask        string
	qDeleteTask        string
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Println("[ERROR] failed to create connection pool:", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		log.Println("[ERROR] failed to connect to database:", err)
		pool.Close()
		return nil, err
	}

	s := &Storage{
		pool:               pool,
		qCreateUser:        `INSERT INTO users (first_name, last_name, username, password) VALUES ($1, NULLIF($2, ''), $3, $4) RETURNING id`,
		qGetUserByID:       `SELECT id, first_name, COALESCE(last_name, ''), username, password FROM users WHERE id = $1`,
		qGetUserByUsername: `SELECT id, first_name, COALESCE(last_name, ''), username, password FROM users WHERE username = $1`,
		qUpdateUser:        `UPDATE users SET first_name = $1, last_name = NULLIF($2, ''), username = $3, password = $4 WHERE id = $5`,
		qDeleteUser:        `DELETE FROM users WHERE id = $1`,
		qCreateTask:        `INSERT INTO tasks (title, description, status, user_id) VALUES ($1, NULLIF($2, ''), $3, $4) RETURNING id`,
		qGetTask:           `SELECT id, title, COALESCE(description, ''), status, user_id FROM tasks WHERE id = $1 AND user_id = $2`,
		qGetTasks:          `SELECT id, title, COALESCE(description, ''), status, user_id FROM tasks WHERE user_id = $1 AND ($2 = '' OR status = $2) ORDER BY id`,
		qGetTasksPage:      `SELECT id, title, COALESCE(description, ''), status, user_id FROM tasks WHERE user_id = $1 AND ($2 = '' OR status = $2) ORDER BY id OFFSET $3 LIMIT $4`,
		qUpdateTask:        `UPDATE tasks SET title = $1, description = NULLIF($2, ''), status = $3 WHERE id = $4 AND user_id = $5`,
		qDeleteTask:        `DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
	}
	log.Println("[SUCCESS] database connection established")
	return s, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	row := s.pool.QueryRow(ctx, s.qCreateUser, user.FirstName, user.LastName, user.Username, user.Password)
	if err := row.Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			log.Println("[ERROR] username already taken:", user.Username)
			return errors.ErrUserAlreadyExists
		}
		log.Println("[ERROR] failed to create user:", err)
		return err
	}
	log.Println("[SUCCESS] user created:", user.ID)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	user := &models.User{}
	row := s.pool.QueryRow(ctx, s.qGetUserByID, id)
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.Password); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] failed to get user:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	user := &models.User{}
	row := s.pool.QueryRow(ctx, s.qGetUserByUsername, username)
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.Password); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] failed to get user:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, s.qUpdateUser, user.FirstName, user.LastName, user.Username, user.Password, id)
	if err != nil {
		if isUniqueViolation(err) {
			log.Println("[ERROR] username already taken:", user.Username)
			return errors.ErrUserAlreadyExists
		}
		log.Println("[ERROR] failed to update user:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	log.Println("[SUCCESS] user updated:", id)
	return nil
}

// DeleteUser removes the user row; the tasks FK is declared ON DELETE
// CASCADE, so the user's tasks go with it.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, s.qDeleteUser, id)
	if err != nil {
		log.Println("[ERROR] failed to delete user:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	log.Println("[SUCCESS] user deleted:", id)
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	row := s.pool.QueryRow(ctx, s.qCreateTask, task.Title, task.Description, task.Status, task.UserID)
	if err := row.Scan(&task.ID); err != nil {
		log.Println("[ERROR] failed to create task:", err)
		return err
	}
	log.Println("[SUCCESS] task created:", task.ID)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, taskID, ownerID int64) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	task := &models.Task{}
	row := s.pool.QueryRow(ctx, s.qGetTask, taskID, ownerID)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.UserID); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrTaskNotFound
		}
		log.Println("[ERROR] failed to get task:", err)
		return nil, err
	}
	return task, nil
}

func (s *Storage) GetTasks(ctx context.Context, ownerID int64, status models.TaskStatus, offset, limit int) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows pgx.Rows
	var err error
	if limit > 0 {
		rows, err = s.pool.Query(ctx, s.qGetTasksPage, ownerID, string(status), offset, limit)
	} else {
		rows, err = s.pool.Query(ctx, s.qGetTasks, ownerID, string(status))
	}
	if err != nil {
		log.Println("[ERROR] failed to get tasks:", err)
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task := models.Task{}
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.UserID); err != nil {
			log.Println("[ERROR] failed to read tasks:", err)
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Println("[ERROR] failed to read tasks:", err)
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskID, ownerID int64, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, s.qUpdateTask, task.Title, task.Description, task.Status, taskID, ownerID)
	if err != nil {
		log.Println("[ERROR] failed to update task:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	log.Println("[SUCCESS] task updated:", taskID)
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, taskID, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, s.qDeleteTask, taskID, ownerID)
	if err != nil {
		log.Println("[ERROR] failed to delete task:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	log.Println("[SUCCESS] task deleted:", taskID)
	return nil
}
