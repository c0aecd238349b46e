package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemoryStatOnlyOneKey(t *testing.T) {
	stat, err := ParseMemoryStat(strings.NewReader("anon 1024\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), stat.Anon)
	assert.Zero(t, stat.File)
}

func TestParseMemoryStatDuplicateErrors(t *testing.T) {
	_, err := ParseMemoryStat(strings.NewReader("anon 1\nanon 2\n"))
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "anon", dup.Field)
}

func TestParseMemoryUsage(t *testing.T) {
	usage, err := ParseMemoryUsage(strings.NewReader("104857600\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(104857600), usage.UsageBytes)
}

func TestParseMemoryUsageEmptyErrors(t *testing.T) {
	_, err := ParseMemoryUsage(strings.NewReader(""))
	require.Error(t, err)
	var bad *InvalidValueError
	require.ErrorAs(t, err, &bad)
}

func TestParseMemoryUsageNonNumericErrors(t *testing.T) {
	_, err := ParseMemoryUsage(strings.NewReader("not-a-number\n"))
	var bad *InvalidValueError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "not-a-number", bad.Value)
}

func TestParseMemoryLimitMax(t *testing.T) {
	limit, err := ParseMemoryLimit(strings.NewReader("max\n"))
	require.NoError(t, err)
	assert.Nil(t, limit.LimitBytes)
}

func TestParseMemoryLimitNumeric(t *testing.T) {
	limit, err := ParseMemoryLimit(strings.NewReader("536870912\n"))
	require.NoError(t, err)
	require.NotNil(t, limit.LimitBytes)
	assert.Equal(t, uint64(536870912), *limit.LimitBytes)
}

func TestParseMemoryLimitTolerantOnGarbage(t *testing.T) {
	limit, err := ParseMemoryLimit(strings.NewReader("not-max-or-numeric\n"))
	require.NoError(t, err)
	assert.Nil(t, limit.LimitBytes)
}

func TestParseMemoryLimitIdempotentOnMax(t *testing.T) {
	for i := 0; i < 3; i++ {
		limit, err := ParseMemoryLimit(strings.NewReader("max\n"))
		require.NoError(t, err)
		assert.Nil(t, limit.LimitBytes)
	}
}
