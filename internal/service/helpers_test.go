package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// pngDataURI is the PNG signature, enough for content sniffing.
const pngDataURI = "data:image/png;base64,iVBORw0KGgo="

var ctx = context.Background()

func newValidator() *validation.Validator {
	return validation.New(config.DefaultRules())
}

func requireValidation(t *testing.T, err error, field, message string) {
	t.Helper()
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	require.Equal(t, field, verr.Field)
	if message != "" {
		require.Equal(t, message, verr.Message)
	}
}
