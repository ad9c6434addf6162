package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNew(t *testing.T) {
	reg := NewRegistry("SAMPLE")
	code := reg.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "sample not found")

	err := reg.New(code).WithDetail("id", 7)

	assert.Equal(t, "SAMPLE_NOT_FOUND", err.Code)
	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, 7, err.Details["id"])
	assert.True(t, errors.Is(err, reg.New(code)))
}

func TestRegistryDuplicatePanics(t *testing.T) {
	reg := NewRegistry("DUP")
	reg.Register("X", TypeValidation, http.StatusBadRequest, "x")
	assert.Panics(t, func() {
		reg.Register("X", TypeValidation, http.StatusBadRequest, "x")
	})
}

func TestWrapKeepsDomainErrors(t *testing.T) {
	reg := NewRegistry("WRAP")
	code := reg.Register("GONE", TypeNotFound, http.StatusNotFound, "gone")
	domain := reg.New(code)

	wrapped := Wrap(fmt.Errorf("outer: %w", domain), "failed", TypeInternal)
	assert.Equal(t, domain, wrapped)

	plain := Wrap(errors.New("boom"), "failed", TypeInternal)
	require.NotNil(t, plain.Err)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
	assert.True(t, IsType(plain, TypeInternal))
}

func TestTypeDefaultStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, TypeAuthentication.DefaultStatus())
	assert.Equal(t, http.StatusNotImplemented, TypeUnsupported.DefaultStatus())
	assert.Equal(t, http.StatusBadRequest, New("bad", TypeBusiness).HTTPStatus)
}
