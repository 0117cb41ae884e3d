package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Nil(t, FormatTimestamp(nil))

	whole := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	got := FormatTimestamp(&whole)
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-09T14:05:07", *got)

	micro := time.Date(2024, 3, 9, 14, 5, 7, 123456000, time.UTC)
	got = FormatTimestamp(&micro)
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-09T14:05:07.123456", *got)
}
