package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVarProviderReturnsOnlyPresentKeys(t *testing.T) {
	t.Setenv("WXR_TEST_PRESENT", "value")
	t.Setenv("WXR_TEST_EMPTY", "")

	got, err := NewEnvVarProvider().GetParametersBatch(context.Background(),
		[]string{"WXR_TEST_PRESENT", "WXR_TEST_EMPTY", "WXR_TEST_ABSENT"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"WXR_TEST_PRESENT": "value", "WXR_TEST_EMPTY": ""}, got)
}
