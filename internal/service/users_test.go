package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/sstanqq/web-task-manager/internal/auth"
	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
	storage "github.com/sstanqq/web-task-manager/repository/inmemory"
)

func newUserService() (*UserService, *storage.Storage) {
	repo := storage.NewStorage()
	return NewUserService(repo, auth.NewPasswordHasher(bcrypt.MinCost)), repo
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService()

	user, err := svc.Register(ctx, models.RegisterRequest{
		FirstName: "Alice",
		Username:  "alice",
		Password:  "secret1",
	})
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret1", user.Password, "password must be stored hashed")

	stored, err := svc.GetUserByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, repo := newUserService()

	first, err := svc.Register(ctx, models.RegisterRequest{
		FirstName: "Alice",
		Username:  "alice",
		Password:  "secret1",
	})
	assert.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{
		FirstName: "Mallory",
		Username:  "alice",
		Password:  "secret2",
	})
	assert.ErrorIs(t, err, errors.ErrUserAlreadyExists)

	// the first record is untouched
	stored, err := repo.GetUserByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Alice", stored.FirstName)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService()

	_, err := svc.Register(ctx, models.RegisterRequest{
		FirstName: "Alice",
		Username:  "alice",
		Password:  "secret1",
	})
	assert.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		want     struct {
			err error
		}
	}{
		{
			name:     "valid credentials",
			username: "alice",
			password: "secret1",
			want: struct {
				err error
			}{},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidCredentials,
			},
		},
		{
			name:     "unknown user",
			username: "bob",
			password: "secret1",
			want: struct {
				err error
			}{
				err: errors.ErrInvalidCredentials,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tt.username, tt.password)
			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
			}
		})
	}
}

func TestUpdateUserPartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService()

	user, err := svc.Register(ctx, models.RegisterRequest{
		FirstName: "Alice",
		LastName:  "Liddell",
		Username:  "alice",
		Password:  "secret1",
	})
	assert.NoError(t, err)
	oldHash := user.Password

	updated, err := svc.Update(ctx, user.ID, models.UpdateUserRequest{
		FirstName: "Alyssa",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Alyssa", updated.FirstName)
	assert.Equal(t, "Liddell", updated.LastName, "unset fields stay untouched")
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, oldHash, updated.Password, "password unchanged without a new one")

	updated, err = svc.Update(ctx, user.ID, models.UpdateUserRequest{
		Password: "secret2",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, oldHash, updated.Password, "new password must be re-hashed")
	assert.NotEqual(t, "secret2", updated.Password)

	_, err = svc.Authenticate(ctx, "alice", "secret2")
	assert.NoError(t, err)
}

func TestUpdateUserNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService()

	_, err := svc.Update(ctx, 42, models.UpdateUserRequest{FirstName: "Nobody"})
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestDeleteUserCascadesTasks(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewStorage()
	users := NewUserService(repo, auth.NewPasswordHasher(bcrypt.MinCost))
	tasks := NewTaskService(repo)

	alice, err := users.Register(ctx, models.RegisterRequest{
		FirstName: "Alice",
		Username:  "alice",
		Password:  "secret1",
	})
	assert.NoError(t, err)

	task, err := tasks.Create(ctx, alice.ID, models.CreateTaskRequest{Title: "T1"})
	assert.NoError(t, err)

	assert.NoError(t, users.Delete(ctx, alice.ID))

	_, err = tasks.Get(ctx, task.ID, alice.ID)
	assert.ErrorIs(t, err, errors.ErrTaskNotFound, "owner deletion must cascade to tasks")

	err = users.Delete(ctx, alice.ID)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}
