package core_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/mehy12/edumate/core"
)

func TestValidationError(t *testing.T) {
	err := core.NewValidationError(errors.New("bad input"))
	assert.Equal(t, "bad input", err.Error())
	assert.Nil(t, err.(*core.ValidationError).FieldMap())

	err = core.NewValidationError(nil, core.FieldError{Field: "topic", Error: "topic is required"})
	assert.Equal(t, "validation failed", err.Error())
	assert.Equal(t, map[string]string{"topic": "topic is required"}, err.(*core.ValidationError).FieldMap())

	err = core.NewFieldValidationError("dates", "dates must be a list")
	assert.Equal(t, "dates must be a list", err.Error())
	assert.Equal(t, map[string]string{"dates": "dates must be a list"}, err.(*core.ValidationError).FieldMap())
}

func TestIsShutdown(t *testing.T) {
	err := core.NewShutdownError("integrity issue")
	assert.True(t, core.IsShutdown(err))
	assert.True(t, core.IsShutdown(errors.Wrap(err, "scheduling")))
	assert.False(t, core.IsShutdown(errors.New("integrity issue")))
	assert.False(t, core.IsShutdown(nil))
}
