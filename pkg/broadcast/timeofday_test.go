package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTimeOfDay_ExplicitWinsOverClock(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	noon := time.Date(2026, 9, 1, 12, 0, 0, 0, loc)
	assert.Equal(t, Night, ResolveTimeOfDay("night", noon, loc))
	assert.Equal(t, Morning, ResolveTimeOfDay("MORNING", noon, loc))
}

func TestResolveTimeOfDay_HourBands(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cases := []struct {
		hour int
		want string
	}{
		{4, Night},
		{5, Morning},
		{10, Morning},
		{11, Noon},
		{14, Noon},
		{15, Afternoon},
		{17, Afternoon},
		{18, Evening},
		{20, Evening},
		{21, Night},
		{23, Night},
		{0, Night},
	}
	for _, tc := range cases {
		now := time.Date(2026, 9, 1, tc.hour, 30, 0, 0, loc)
		assert.Equal(t, tc.want, ResolveTimeOfDay("", now, loc), "hour %d", tc.hour)
	}
}

func TestResolveTimeOfDay_ConvertsToConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 02:00 UTC is 07:30 IST
	now := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, Morning, ResolveTimeOfDay("", now, loc))
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "good-morning.png", AttachmentName(Morning))
	assert.Equal(t, "good-night.png", AttachmentName(Night))
}
