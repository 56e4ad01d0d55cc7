package punch

import (
	"testing"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairWindow_OutBeyondWindowIsPartial(t *testing.T) {
	// 09:00 start: window closes at 23:00, so 23:40 cannot be the out punch
	pair, err := PairWindow(9*60, []string{"09:05", "23:40"})
	require.NoError(t, err)
	require.NotNil(t, pair.InTime)
	assert.Equal(t, "09:05", *pair.InTime)
	assert.Nil(t, pair.OutTime)
	assert.False(t, pair.OutNextDay)
}

func TestPairWindow_NightShift(t *testing.T) {
	pair, err := PairWindow(22*60, []string{"22:10", "05:45"})
	require.NoError(t, err)
	require.NotNil(t, pair.InTime)
	require.NotNil(t, pair.OutTime)
	assert.Equal(t, "22:10", *pair.InTime)
	assert.Equal(t, "05:45", *pair.OutTime)
	assert.True(t, pair.OutNextDay)
}

func TestPairWindow_DayShiftTakesEarliestAfterIn(t *testing.T) {
	pair, err := PairWindow(9*60, []string{"17:30", "09:02", "12:00", "09:02"})
	require.NoError(t, err)
	assert.Equal(t, "09:02", *pair.InTime)
	assert.Equal(t, "12:00", *pair.OutTime)
	assert.False(t, pair.OutNextDay)
}

func TestPairWindow_EarlyPunchWrapsPastWindow(t *testing.T) {
	// 08:50 before a 09:00 start normalizes to the next day, outside the window
	pair, err := PairWindow(9*60, []string{"08:50"})
	require.NoError(t, err)
	assert.Nil(t, pair.InTime)
	assert.Nil(t, pair.OutTime)
}

func TestPairWindow_NoPunches(t *testing.T) {
	pair, err := PairWindow(9*60, nil)
	require.NoError(t, err)
	assert.Nil(t, pair.InTime)
	assert.Nil(t, pair.OutTime)
}

func TestPairTyped(t *testing.T) {
	pair := PairTyped(9*60, []Punch{
		{Time: "09:10", Direction: DirectionIn},
		{Time: "12:00", Direction: DirectionOut},
		{Time: "08:55", Direction: DirectionIn},
		{Time: "17:05", Direction: DirectionOut},
	})
	assert.Equal(t, "08:55", *pair.InTime)
	assert.Equal(t, "17:05", *pair.OutTime)
	assert.False(t, pair.OutNextDay)

	night := PairTyped(22*60, []Punch{
		{Time: "22:05", Direction: DirectionIn},
		{Time: "06:01", Direction: DirectionOut},
	})
	assert.True(t, night.OutNextDay)

	outOnly := PairTyped(9*60, []Punch{{Time: "17:00", Direction: DirectionOut}})
	assert.Nil(t, outOnly.InTime)
	assert.Equal(t, "17:00", *outOnly.OutTime)
	assert.False(t, outOnly.OutNextDay)
}

func TestPairTyped_NightShiftTakesNextDayCheckOut(t *testing.T) {
	pair := PairTyped(22*60, []Punch{
		{Time: "22:10", Direction: DirectionIn},
		{Time: "23:00", Direction: DirectionOut},
		{Time: "05:45", Direction: DirectionOut},
	})
	require.NotNil(t, pair.InTime)
	require.NotNil(t, pair.OutTime)
	assert.Equal(t, "22:10", *pair.InTime)
	assert.Equal(t, "05:45", *pair.OutTime)
	assert.True(t, pair.OutNextDay)

	// a check-in after midnight is still later than one before it
	late := PairTyped(22*60, []Punch{
		{Time: "00:15", Direction: DirectionIn},
		{Time: "23:55", Direction: DirectionIn},
		{Time: "06:00", Direction: DirectionOut},
	})
	assert.Equal(t, "23:55", *late.InTime)
	assert.True(t, late.OutNextDay)
}

func TestEngine_Resolve(t *testing.T) {
	punches := []Punch{
		{Time: "22:10", Direction: DirectionIn},
		{Time: "05:45", Direction: DirectionOut},
	}
	night := shift.Shift{Start: "22:00", End: "06:00"}

	pair, err := NewEngine(ModeWindow).Resolve(night, punches)
	require.NoError(t, err)
	assert.True(t, pair.OutNextDay)

	pair, err = NewEngine(ModeTyped).Resolve(night, append(punches, Punch{Time: "23:00", Direction: DirectionOut}))
	require.NoError(t, err)
	assert.Equal(t, "05:45", *pair.OutTime)
	assert.True(t, pair.OutNextDay)

	_, err = NewEngine(ModeWindow).Resolve(shift.Shift{Start: "x"}, punches)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeWindow, m)
	m, err = ParseMode("typed")
	require.NoError(t, err)
	assert.Equal(t, ModeTyped, m)
	_, err = ParseMode("fuzzy")
	assert.Error(t, err)
}
