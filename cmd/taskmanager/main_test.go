package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sstanqq/web-task-manager/internal/server"
	inmemory "github.com/sstanqq/web-task-manager/repository/inmemory"
)

type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTaskAPI) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestGracefulShutdownSignalHandling(t *testing.T) {
	tests := []struct {
		name   string
		signal os.Signal
	}{
		{name: "SIGINT signal", signal: syscall.SIGINT},
		{name: "SIGTERM signal", signal: syscall.SIGTERM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, tt.signal)
			defer signal.Stop(sigChan)

			go func() {
				time.Sleep(10 * time.Millisecond)
				sigChan <- tt.signal
			}()

			select {
			case sig := <-sigChan:
				assert.Equal(t, tt.signal, sig)
			case <-time.After(100 * time.Millisecond):
				t.Fatal("Signal not received within timeout")
			}
		})
	}
}

func TestConfigurationReading(t *testing.T) {
	cfg := server.ReadConfig()
	assert.NotNil(t, cfg, "Configuration should not be nil")
}

func TestInitializeRepositories(t *testing.T) {
	tests := []struct {
		name string
		cfg  *server.Config
		want struct {
			fallback bool
		}
	}{
		{
			name: "invalid connection string falls back to in-memory",
			cfg:  &server.Config{DBStr: "invalid_connection"},
			want: struct {
				fallback bool
			}{
				fallback: true,
			},
		},
		{
			name: "empty connection string falls back to in-memory",
			cfg:  &server.Config{DBStr: ""},
			want: struct {
				fallback bool
			}{
				fallback: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo, taskRepo, err := InitializeRepositories(tt.cfg)
			assert.NoError(t, err, "fallback must not surface an error")
			assert.NotNil(t, userRepo)
			assert.NotNil(t, taskRepo)
			if tt.want.fallback {
				_, ok := userRepo.(*inmemory.Storage)
				assert.True(t, ok, "unreachable database should yield the in-memory storage")
			}
		})
	}
}

func TestRunMigrations(t *testing.T) {
	tests := []struct {
		name string
		cfg  *server.Config
	}{
		{
			name: "invalid connection string",
			cfg:  &server.Config{DBStr: "invalid_connection", MigratePath: "invalid_path"},
		},
		{
			name: "empty migrate path",
			cfg:  &server.Config{DBStr: "invalid_connection", MigratePath: ""},
		},
		{
			name: "non-existent migrate path",
			cfg:  &server.Config{DBStr: "invalid_connection", MigratePath: "/nonexistent/path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, RunMigrations(tt.cfg), "Should return error with invalid parameters")
		})
	}
}

func TestStartServer(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*MockTaskAPI)
		want      struct {
			serverErr bool
		}
	}{
		{
			name: "successful startup",
			mockSetup: func(mockAPI *MockTaskAPI) {
				mockAPI.On("Start").Return(nil)
			},
			want: struct {
				serverErr bool
			}{
				serverErr: false,
			},
		},
		{
			name: "startup error lands on the error channel",
			mockSetup: func(mockAPI *MockTaskAPI) {
				mockAPI.On("Start").Return(assert.AnError)
			},
			want: struct {
				serverErr bool
			}{
				serverErr: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := &MockTaskAPI{}
			tt.mockSetup(mockAPI)

			sigChan, serverErr := StartServer(mockAPI, &server.Config{Addr: "localhost", Port: 8080})
			defer signal.Stop(sigChan)
			assert.NotNil(t, sigChan)
			assert.NotNil(t, serverErr)

			if tt.want.serverErr {
				select {
				case err := <-serverErr:
					assert.Error(t, err)
				case <-time.After(time.Second):
					t.Fatal("expected the startup error on the channel")
				}
			}

			mockAPI.AssertExpectations(t)
		})
	}
}

func TestHandleShutdown(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*MockTaskAPI)
		want      struct {
			error bool
		}
	}{
		{
			name: "successful shutdown",
			mockSetup: func(mockAPI *MockTaskAPI) {
				mockAPI.On("Shutdown", mock.Anything).Return(nil)
			},
			want: struct {
				error bool
			}{
				error: false,
			},
		},
		{
			name: "shutdown error",
			mockSetup: func(mockAPI *MockTaskAPI) {
				mockAPI.On("Shutdown", mock.Anything).Return(assert.AnError)
			},
			want: struct {
				error bool
			}{
				error: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := &MockTaskAPI{}
			tt.mockSetup(mockAPI)

			err := HandleShutdown(mockAPI, syscall.SIGTERM)
			if tt.want.error {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			mockAPI.AssertExpectations(t)
		})
	}
}

func TestAPIInitialization(t *testing.T) {
	inmem := inmemory.NewStorage()
	api := server.NewTaskAPI(inmem, inmem, &server.Config{})
	assert.NotNil(t, api, "API should be created")
}
