package http

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, registerValidators())
	require.NoError(t, registerValidators(), "second call reuses the first outcome")
}

func TestRegisterCategory(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerCategory(v))

	type payload struct {
		Category string `validate:"category"`
	}
	assert.NoError(t, v.Struct(payload{Category: "13+"}))
	assert.NoError(t, v.Struct(payload{Category: "EIGHTEEN_PLUS"}))
	assert.Error(t, v.Struct(payload{Category: "kids"}))

	err := registerCategory("not a validator")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected validator engine string")
}
