package errx

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageFormats(t *testing.T) {
	plain := New(nil, http.StatusBadRequest, "bad input")
	assert.Equal(t, "bad input", plain.Error())

	wrapped := New(fmt.Errorf("boom"), http.StatusInternalServerError, "failed")
	assert.Equal(t, "failed: boom", wrapped.Error())
}

func TestFaultClassification(t *testing.T) {
	err := Faultf(FaultTranslation, "planner returned %s", "garbage")
	assert.Equal(t, FaultTranslation, FaultOf(err))
	assert.Equal(t, "planner returned garbage", err.Message)

	wrapped := fmt.Errorf("stage: %w", err)
	assert.Equal(t, FaultTranslation, FaultOf(wrapped))

	assert.Equal(t, Fault(""), FaultOf(errors.New("ordinary")))
	assert.Equal(t, Fault(""), FaultOf(nil))
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("root cause")
	err := NewFault(FaultQuery, cause, "store failed")
	assert.True(t, errors.Is(err, cause))

	var ae *AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, FaultQuery, ae.Fault)
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	var ae *AppError
	require.ErrorAs(t, WrapRedis(redis.Nil), &ae)
	assert.Equal(t, http.StatusNotFound, ae.Status)

	require.ErrorAs(t, WrapRedis(errors.New("conn refused")), &ae)
	assert.Equal(t, http.StatusBadGateway, ae.Status)
}

func TestWrapStore(t *testing.T) {
	assert.NoError(t, WrapStore(nil))
	assert.NoError(t, WrapStore(sql.ErrNoRows))

	err := WrapStore(errors.New("disk io"))
	assert.Equal(t, FaultQuery, FaultOf(err))
}
