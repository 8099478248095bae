package usecase

import "errors"

// Sentinels the services wrap with fmt.Errorf("%w: ...") so the HTTP
// layer can map them to status codes without parsing messages.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
