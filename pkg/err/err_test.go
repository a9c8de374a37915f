package errprocess

import (
	"errors"
	"net/http"
	"testing"

	"marketplace_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	m.Run()
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindAuthorization, KindOf(Authorization("nope")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("not editable")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(Validation("x")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(InvalidState("x")))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(Authentication("x")))
	assert.Equal(t, http.StatusForbidden, StatusOf(Authorization("x")))
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
}

func TestErrorMessagePassesThrough(t *testing.T) {
	err := Validation("query needs at least 2 characters")
	assert.Equal(t, "query needs at least 2 characters", err.Error())
}
