package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeWeekRange(t *testing.T) {
	start := time.Date(2024, 2, 26, 15, 30, 0, 0, time.UTC)
	from, to := TimeframeWeek.Range(start)

	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 3, 23, 59, 59, 999000000, time.UTC), to)
}

func TestTimeframeMonthRange(t *testing.T) {
	start := time.Date(2024, 2, 14, 8, 0, 0, 0, time.UTC)
	from, to := TimeframeMonth.Range(start)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999000000, time.UTC), to)
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("month")
	require.NoError(t, err)
	assert.Equal(t, TimeframeMonth, tf)

	_, err = ParseTimeframe("year")
	assert.Error(t, err)
}
