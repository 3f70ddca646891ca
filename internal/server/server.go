package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"

	"github.com/sstanqq/web-task-manager/internal/auth"
	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
	"github.com/sstanqq/web-task-manager/internal/service"
)

// TaskAPI is the HTTP boundary: it deserializes requests, calls the core
// services and maps error kinds to transport statuses.
type TaskAPI struct {
	httpSrv  *http.Server
	users    *service.UserService
	tasks    *service.TaskService
	tokens   *auth.TokenIssuer
	resolver *auth.SessionResolver
}

func NewTaskAPI(userRepo service.UserRepository, taskRepo service.TaskRepository, cfg *Config) *TaskAPI {
	if userRepo == nil || taskRepo == nil {
		return nil
	}
	if cfg == nil {
		cfg = &Config{}
	}

	hasher := auth.NewPasswordHasher(0)
	users := service.NewUserService(userRepo, hasher)
	tasks := service.NewTaskService(taskRepo)
	tokens := auth.NewTokenIssuer(cfg.SecretKey, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	api := TaskAPI{
		httpSrv: &http.Server{
			Addr: fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
		},
		users:    users,
		tasks:    tasks,
		tokens:   tokens,
		resolver: auth.NewSessionResolver(tokens, users),
	}

	api.configRoutes()

	return &api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}

	if api.httpSrv.Addr == "" || api.httpSrv.Addr == ":0" {
		api.httpSrv.Addr = ":8080"
	}

	return api.httpSrv.ListenAndServe()
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes() {
	router := gin.Default()
	router.Use(RequestID())

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "method not allowed"})
	})

	router.GET("/", api.index)

	authGroup := router.Group("/auth", RateLimit(5, 10))
	{
		authGroup.POST("/register", api.register)
		authGroup.POST("/login", api.login)
	}

	users := router.Group("/users")
	{
		users.GET("/:userID", api.getUser)

		me := users.Group("/me", RequireAuth(api.resolver))
		{
			me.GET("", api.getMe)
			me.PUT("", api.updateMe)
			me.DELETE("", api.deleteMe)
		}
	}

	tasks := router.Group("/tasks", RequireAuth(api.resolver))
	{
		tasks.GET("", api.getTasks)
		tasks.POST("", api.createTask)
		tasks.GET(":taskID", api.getTask)
		tasks.PUT(":taskID", api.updateTask)
		tasks.PATCH(":taskID/complete", api.completeTask)
		tasks.DELETE(":taskID", api.deleteTask)
	}

	api.httpSrv.Handler = router
}

func (api *TaskAPI) index(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Welcome to the web-task-manager!"})
}

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": validationErrorToErrorResponse(err).Error()})
		return
	}

	user, err := api.users.Register(ctx.Request.Context(), req)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserAlreadyExists) {
			ctx.JSON(http.StatusConflict, gin.H{"detail": "Username already registered"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrValidationFailed.Error()})
		return
	}

	user, err := api.users.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctx.Header("WWW-Authenticate", "Bearer")
		ctx.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid username or password"})
		return
	}

	token, err := api.tokens.Issue(user.Username)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (api *TaskAPI) getUser(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("userID"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user id"})
		return
	}

	user, err := api.users.GetByID(ctx.Request.Context(), userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (api *TaskAPI) getMe(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, currentUser(ctx))
}

func (api *TaskAPI) updateMe(ctx *gin.Context) {
	var req models.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": validationErrorToErrorResponse(err).Error()})
		return
	}

	user, err := api.users.Update(ctx.Request.Context(), currentUser(ctx).ID, req)
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrUserAlreadyExists):
			ctx.JSON(http.StatusConflict, gin.H{"detail": "Username already registered"})
		case stderrors.Is(err, errors.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (api *TaskAPI) deleteMe(ctx *gin.Context) {
	if err := api.users.Delete(ctx.Request.Context(), currentUser(ctx).ID); err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (api *TaskAPI) getTasks(ctx *gin.Context) {
	owner := currentUser(ctx)
	status := models.TaskStatus(ctx.Query("status"))

	pageStr := ctx.Query("page")
	limitStr := ctx.Query("limit")

	var tasks []models.Task
	var err error
	if pageStr == "" && limitStr == "" {
		tasks, err = api.tasks.List(ctx.Request.Context(), owner.ID, status)
	} else {
		page, limit := 1, 10
		if pageStr != "" {
			if page, err = strconv.Atoi(pageStr); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrInvalidArgument.Error()})
				return
			}
		}
		if limitStr != "" {
			if limit, err = strconv.Atoi(limitStr); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrInvalidArgument.Error()})
				return
			}
		}
		tasks, err = api.tasks.ListPage(ctx.Request.Context(), owner.ID, status, page, limit)
	}
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrInvalidArgument):
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrInvalidArgument.Error()})
		case stderrors.Is(err, errors.ErrInvalidStatus):
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrInvalidStatus.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (api *TaskAPI) createTask(ctx *gin.Context) {
	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": validationErrorToErrorResponse(err).Error()})
		return
	}

	task, err := api.tasks.Create(ctx.Request.Context(), currentUser(ctx).ID, req)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidStatus) {
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrInvalidStatus.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func (api *TaskAPI) getTask(ctx *gin.Context) {
	taskID, err := strconv.ParseInt(ctx.Param("taskID"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	task, err := api.tasks.Get(ctx.Request.Context(), taskID, currentUser(ctx).ID)
	if err != nil {
		api.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	taskID, err := strconv.ParseInt(ctx.Param("taskID"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": validationErrorToErrorResponse(err).Error()})
		return
	}

	task, err := api.tasks.Update(ctx.Request.Context(), taskID, currentUser(ctx).ID, req)
	if err != nil {
		api.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) completeTask(ctx *gin.Context) {
	taskID, err := strconv.ParseInt(ctx.Param("taskID"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	task, err := api.tasks.MarkCompleted(ctx.Request.Context(), taskID, currentUser(ctx).ID)
	if err != nil {
		api.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	taskID, err := strconv.ParseInt(ctx.Param("taskID"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	if err := api.tasks.Delete(ctx.Request.Context(), taskID, currentUser(ctx).ID); err != nil {
		api.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// taskError maps task store failures to transport statuses. A task owned
// by someone else surfaces as the same 404 as a missing one.
func (api *TaskAPI) taskError(ctx *gin.Context, err error) {
	switch {
	case stderrors.Is(err, errors.ErrTaskNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
	case stderrors.Is(err, errors.ErrInvalidStatus):
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": errors.ErrInvalidStatus.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": errors.ErrInternalServer.Error()})
	}
}

func validationErrorToErrorResponse(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "FirstName":
				return errors.ErrInvalidFirstName
			case "Username":
				return errors.ErrInvalidUsername
			case "Password":
				return errors.ErrInvalidPassword
			case "Status":
				return errors.ErrInvalidStatus
			case "Title":
				return errors.ErrInvalidTitle
			case "Description":
				return errors.ErrInvalidDescription
			}
		}
	}
	return errors.ErrValidationFailed
}
