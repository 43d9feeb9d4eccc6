package err

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsBucket(t *testing.T) {
	assert.Nil(t, NewErrorsBucket("nothing", nil, nil))

	sentinel := errors.New("sequence bid_matrix_a: 400")
	b := NewErrorsBucket("2 resources failed", sentinel, nil, errors.New("file Glomma_model: unreadable"))
	require.NotNil(t, b)
	assert.Len(t, b.Errors, 2)
	assert.Equal(t, "2 resources failed\n\tsequence bid_matrix_a: 400\n\tfile Glomma_model: unreadable", b.Error())
	assert.ErrorIs(t, b, sentinel)
}

func TestIsConfigurationError(t *testing.T) {
	ce := &ConfigurationError{Err: errors.New("cdf.project is not set")}
	assert.True(t, IsConfigurationError(ce))
	assert.True(t, IsConfigurationError(fmt.Errorf("building client: %w", ce)))
	assert.False(t, IsConfigurationError(&ExecutionError{Err: errors.New("boom")}))
}

func TestTryConvertErrorToAttrs(t *testing.T) {
	attrs := TryConvertErrorToAttrs(errors.New(`{"code":400}`))
	assert.Equal(t, []any{"code", float64(400)}, attrs)
	assert.Nil(t, TryConvertErrorToAttrs(errors.New("plain")))
}
