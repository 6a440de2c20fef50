package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("bad")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("wrap: %w", ErrNoText)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewAppError("NO_CLASSES", "none", ErrNoClasses)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(ErrTooLarge))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestMessageAndGRPCStatus(t *testing.T) {
	err := fmt.Errorf("calc: %w", InvalidInput("target_percentage out of range"))
	assert.Equal(t, "target_percentage out of range", Message(err))

	st, ok := status.FromError(GRPCStatus(err))
	assert.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "target_percentage out of range", st.Message())

	st, _ = status.FromError(GRPCStatus(errors.New("db down")))
	assert.Equal(t, codes.Internal, st.Code())
	assert.Nil(t, GRPCStatus(nil))
}
