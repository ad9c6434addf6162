package errx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Type clasifica un error para decidir cómo se presenta al cliente
type Type string

const (
	TypeInternal       Type = "INTERNAL"
	TypeValidation     Type = "VALIDATION"
	TypeBusiness       Type = "BUSINESS"
	TypeAuthentication Type = "AUTHENTICATION"
	TypeAuthorization  Type = "AUTHORIZATION"
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT"
	TypeUnsupported    Type = "UNSUPPORTED"
)

// DefaultStatus returns the HTTP status used when an error of this type
// carries no explicit status.
func (t Type) DefaultStatus() int {
	switch t {
	case TypeValidation, TypeBusiness:
		return http.StatusBadRequest
	case TypeAuthentication:
		return http.StatusUnauthorized
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error es el error estructurado que atraviesa todas las capas
type Error struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Type       Type           `json:"type"`
	HTTPStatus int            `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors carrying the same code, so registry errors can be
// compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a key to the error details and returns the same error
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithMessage replaces the human readable message
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// New crea un error sin código de registro
func New(message string, t Type) *Error {
	return &Error{
		Code:       string(t),
		Message:    message,
		Type:       t,
		HTTPStatus: t.DefaultStatus(),
	}
}

// Wrap envuelve un error existente. Si err ya es un *Error de un tipo
// distinto a Internal se conserva tal cual para no perder su código.
func Wrap(err error, message string, t Type) *Error {
	var existing *Error
	if errors.As(err, &existing) && existing.Type != TypeInternal {
		return existing
	}
	return &Error{
		Code:       string(t),
		Message:    message,
		Type:       t,
		HTTPStatus: t.DefaultStatus(),
		Err:        err,
	}
}

// As extracts an *Error from the chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, t Type) bool {
	e, ok := As(err)
	return ok && e.Type == t
}

// ============================================================================
// Registry
// ============================================================================

// Code identifica un error registrado
type Code string

type definition struct {
	t       Type
	status  int
	message string
}

// Registry agrupa los errores de un dominio bajo un prefijo
type Registry struct {
	prefix string
	mu     sync.RWMutex
	defs   map[Code]definition
}

// NewRegistry crea un registro de errores con prefijo
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		defs:   make(map[Code]definition),
	}
}

// Register da de alta un código y devuelve su identificador completo
func (r *Registry) Register(code string, t Type, status int, message string) Code {
	full := Code(r.prefix + "_" + code)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[full]; exists {
		panic("errx: duplicate error code " + string(full))
	}
	r.defs[full] = definition{t: t, status: status, message: message}
	return full
}

// New instancia un error registrado
func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()
	if !ok {
		return &Error{
			Code:       string(code),
			Message:    "unregistered error",
			Type:       TypeInternal,
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &Error{
		Code:       string(code),
		Message:    def.message,
		Type:       def.t,
		HTTPStatus: def.status,
	}
}

// NewWithCause instancia un error registrado con causa
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	e := r.New(code)
	e.Err = cause
	return e
}
