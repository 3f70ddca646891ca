package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
	storage "github.com/sstanqq/web-task-manager/repository/inmemory"
)

// TestFullLifecycle drives the whole API over the in-memory storage:
// registration, login, the task lifecycle and finally account deletion
// with its cascade.
func TestFullLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := storage.NewStorage()
	api := NewTaskAPI(store, store, &Config{})
	handler := api.httpSrv.Handler

	do := func(method, target, contentType, body, token string) *httptest.ResponseRecorder {
		t.Helper()
		req, err := http.NewRequest(method, target, strings.NewReader(body))
		assert.NoError(t, err)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// register
	w := do("POST", "/auth/register", "application/json",
		`{"first_name":"Alice","username":"alice","password":"secret1"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	var registered models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.NotZero(t, registered.ID)
	assert.Equal(t, "alice", registered.Username)

	// login
	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "secret1")
	w = do("POST", "/auth/login", "application/x-www-form-urlencoded", form.Encode(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	var tokenResp models.TokenResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	assert.Equal(t, "bearer", tokenResp.TokenType)
	token := tokenResp.AccessToken
	assert.NotEmpty(t, token)

	// create a task
	w = do("POST", "/tasks", "application/json", `{"title":"T1","description":"first"}`, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Task
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusNew, created.Status)
	assert.Equal(t, registered.ID, created.UserID)

	// it shows up in the listing as New
	w = do("GET", "/tasks", "", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	var listed []models.Task
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
	assert.Equal(t, models.StatusNew, listed[0].Status)

	// complete it
	w = do("PATCH", fmt.Sprintf("/tasks/%d/complete", created.ID), "", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("GET", fmt.Sprintf("/tasks/%d", created.ID), "", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	var completed models.Task
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, models.StatusCompleted, completed.Status)

	// delete the account
	w = do("DELETE", "/users/me", "", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	// the still-valid token no longer resolves to a user
	w = do("GET", "/tasks", "", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Could not validate credentials")

	// and the cascade removed the task from the storage
	_, err := store.GetTask(context.Background(), created.ID, registered.ID)
	assert.ErrorIs(t, err, errors.ErrTaskNotFound)
}
