package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	err := Wrap(ErrNilHandler, "Bus", "Register", "handler validation")
	require.Error(t, err)
	assert.Equal(t, "Bus.Register: handler validation failed: handler cannot be nil", err.Error())
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestWrap_NilPassesThrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "Bus", "Register", "anything"))
	assert.NoError(t, WrapRecoverable(nil, "Bus", "Register", "anything"))
	assert.NoError(t, WrapInvalid(nil, "Bus", "Register", "anything"))
	assert.NoError(t, WrapFatal(nil, "Bus", "Register", "anything"))
}

func TestWrapFatal_Classification(t *testing.T) {
	err := WrapFatal(ErrNilBus, "Token", "NewToken", "bus validation")
	require.Error(t, err)

	assert.True(t, IsFatal(err))
	assert.False(t, IsInvalid(err))
	assert.False(t, IsRecoverable(err))
	assert.Equal(t, ErrorFatal, Classify(err))
	assert.ErrorIs(t, err, ErrNilBus)

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "Token", ce.Component)
	assert.Equal(t, "NewToken", ce.Operation)
}

func TestWrapInvalid_Classification(t *testing.T) {
	err := WrapInvalid(ErrUnsupportedShape, "Message", "KindOf", "classification")
	assert.True(t, IsInvalid(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, ErrorInvalid, Classify(err))
}

func TestWrapRecoverable_Classification(t *testing.T) {
	err := WrapRecoverable(ErrRegistrationNotFound, "Bus", "Deregister", "lookup")
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, ErrorRecoverable, Classify(err))
}

func TestBareSentinels_ClassifyByIdentity(t *testing.T) {
	assert.True(t, IsFatal(ErrNilHandler))
	assert.True(t, IsFatal(ErrNilToken))
	assert.True(t, IsInvalid(ErrInvalidIdentity))
	assert.True(t, IsInvalid(ErrAmbiguousShape))
	assert.True(t, IsInvalid(ErrInvalidConfig))
	assert.True(t, IsRecoverable(ErrDuplicateRegistration))
}

func TestClassify_Nil(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsRecoverable(nil))
}

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "recoverable", ErrorRecoverable.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(99).String())
}
