package checkin

import "errors"

// Messages are returned verbatim to the check-in page.
var (
	ErrMalformedBody      = errors.New("JSON inválido")
	ErrInvalidName        = errors.New("Nome inválido")
	ErrInvalidURL         = errors.New("URL da reunião inválida")
	ErrForwardUnavailable = errors.New("forward unavailable")
	ErrSinkInsertFailed   = errors.New("insert failed")
	ErrSinkCallFailed     = errors.New("insert exception")
)
