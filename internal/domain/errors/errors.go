package errors

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserAlreadyExists  = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidArgument    = errors.New("invalid pagination parameters")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInternalServer     = errors.New("internal server error")
	ErrBadRequest         = errors.New("bad request")

	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("password must contain at least 6 characters")
	ErrInvalidFirstName   = errors.New("invalid first name")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidTitle       = errors.New("invalid task title")
	ErrInvalidDescription = errors.New("invalid task description")

	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigParseFailed    = errors.New("failed to parse config file")
	ErrConfigInvalidFormat  = errors.New("invalid config value")
)
