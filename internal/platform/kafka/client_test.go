package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credverify/internal/platform/config"
)

func TestNewWithoutBrokersIsDisabled(t *testing.T) {
	client, err := New(context.Background(), config.Kafka{Topic: "credverify.status"})
	require.NoError(t, err)
	assert.Nil(t, client)
}
