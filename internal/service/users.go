package service

import (
	"context"
	"log"

	"github.com/sstanqq/web-task-manager/internal/auth"
	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
)

// UserRepository is the persistence collaborator for user records.
// CreateUser and UpdateUser must report a username uniqueness violation
// as ErrUserAlreadyExists; CreateUser assigns the record's ID.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService is the identity directory: it maps usernames to user records,
// enforces username uniqueness and owns the password hashing boundary.
type UserService struct {
	repo   UserRepository
	hasher auth.PasswordHasher
}

func NewUserService(repo UserRepository, hasher auth.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// Register creates a new user with a hashed password. The username
// pre-check is best effort; the storage unique index is the backstop
// against concurrent registrations.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if existing, _ := s.repo.GetUserByUsername(ctx, req.Username); existing != nil {
		return nil, errors.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		log.Println("[ERROR] failed to hash password:", err)
		return nil, errors.ErrInternalServer
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Println("[SUCCESS] user registered:", user.Username)
	return user, nil
}

// Authenticate checks login credentials. A missing user and a wrong
// password produce the same failure.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.Password) {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

// Update applies a partial profile update. Empty fields are left
// untouched; a non-empty password is re-hashed before storage.
func (s *UserService) Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			log.Println("[ERROR] failed to hash password:", err)
			return nil, errors.ErrInternalServer
		}
		user.Password = hash
	}

	if err := s.repo.UpdateUser(ctx, id, user); err != nil {
		return nil, err
	}
	log.Println("[SUCCESS] user updated:", id)
	return user, nil
}

// Delete removes the user; the storage layer cascades the user's tasks.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	log.Println("[SUCCESS] user deleted:", id)
	return nil
}
