package contractdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeEndDate_JulyVacation(t *testing.T) {
	res := ComputeEndDate(date("2025-07-01"), 1, time.Monday)

	assert.Equal(t, date("2025-07-31"), res.BaseEnd)
	assert.Equal(t, 25, res.ExtraDays)
	assert.Equal(t, date("2025-08-25"), res.End)
	assert.Equal(t, []string{"Férias de julho 2025 (18 dias)"}, res.Blackouts)
	assert.Empty(t, res.Holidays)
	assert.Equal(t, CalendarVersion, res.Version)
}

func TestComputeEndDate_Deterministic(t *testing.T) {
	first := ComputeEndDate(date("2025-06-02"), 12, time.Thursday)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ComputeEndDate(date("2025-06-02"), 12, time.Thursday))
	}
	assert.IsIncreasing(t, first.Holidays)
}

func TestComputeEndDate_HolidayOnlyCountsOnClassDay(t *testing.T) {
	// 2025-09-01 + 90 days = 2025-11-30. Consciência Negra (20/11) is a Thursday.
	thursday := ComputeEndDate(date("2025-09-01"), 3, time.Thursday)
	assert.Equal(t, 8, thursday.ExtraDays)
	assert.Equal(t, []string{"Consciência Negra (20/11/2025)"}, thursday.Holidays)
	assert.Equal(t, date("2025-12-08"), thursday.End)

	monday := ComputeEndDate(date("2025-09-01"), 3, time.Monday)
	assert.Equal(t, GraceDays, monday.ExtraDays)
	assert.Empty(t, monday.Holidays)
	assert.Equal(t, date("2025-12-07"), monday.End)
}

func TestComputeEndDate_SingleDayOverlap(t *testing.T) {
	t.Run("base end touches range start", func(t *testing.T) {
		res := ComputeEndDate(date("2025-06-14"), 1, time.Monday)
		require.Equal(t, date("2025-07-14"), res.BaseEnd)
		assert.Equal(t, []string{"Férias de julho 2025 (1 dia)"}, res.Blackouts)
		assert.Equal(t, GraceDays+1, res.ExtraDays)
	})

	t.Run("start touches range end", func(t *testing.T) {
		res := ComputeEndDate(date("2025-07-31"), 1, time.Friday)
		assert.Equal(t, []string{"Férias de julho 2025 (1 dia)"}, res.Blackouts)
		assert.Equal(t, GraceDays+1, res.ExtraDays)
		assert.Equal(t, date("2025-09-07"), res.End)
	})
}

func TestComputeEndDate_OutsideRangesContributeNothing(t *testing.T) {
	// 2025-08-04 .. 2025-09-03 has no blackout and no holiday on a Wednesday.
	res := ComputeEndDate(date("2025-08-04"), 1, time.Wednesday)
	assert.Empty(t, res.Blackouts)
	assert.Empty(t, res.Holidays)
	assert.Equal(t, GraceDays, res.ExtraDays)
	assert.Equal(t, date("2025-09-10"), res.End)
}

func TestComputeEndDate_DegenerateDurations(t *testing.T) {
	zero := ComputeEndDate(date("2025-08-04"), 0, time.Monday)
	assert.Equal(t, date("2025-08-04"), zero.BaseEnd)
	assert.Equal(t, date("2025-08-11"), zero.End)

	negative := ComputeEndDate(date("2025-08-04"), -1, time.Monday)
	assert.Equal(t, date("2025-07-05"), negative.BaseEnd)
	assert.Equal(t, GraceDays, negative.ExtraDays)
	assert.Empty(t, negative.Blackouts)
	assert.Equal(t, date("2025-07-12"), negative.End)
}

func TestCalendar_CustomTablesSortLabels(t *testing.T) {
	cal := &Calendar{
		Version: "test",
		Blackouts: []BlackoutRange{
			{Label: "Semana B", Start: date("2030-03-11"), End: date("2030-03-12")},
			{Label: "Semana A", Start: date("2030-03-04"), End: date("2030-03-06")},
		},
		Holidays: []Holiday{
			{Label: "Feriado Z", Date: date("2030-03-18")},
			{Label: "Feriado A", Date: date("2030-03-25")},
			{Label: "Feriado Sabado", Date: date("2030-03-23")},
		},
	}

	res := cal.ComputeEndDate(date("2030-03-01"), 1, time.Monday)
	assert.Equal(t, []string{"Semana A (3 dias)", "Semana B (2 dias)"}, res.Blackouts)
	assert.Equal(t, []string{"Feriado A (25/03/2030)", "Feriado Z (18/03/2030)"}, res.Holidays)
	assert.Equal(t, GraceDays+3+2+2, res.ExtraDays)
	assert.Equal(t, "test", res.Version)
	assert.Equal(t, time.Monday, cal.Holidays[0].Weekday())
}

func TestComputeEndDate_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.July, 1, 23, 59, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, date("2025-08-25"), ComputeEndDate(start, 1, time.Monday).End)
}
