package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{in: "12:00:00", want: NewTimeOfDay(12, 0, 0)},
		{in: "07:30", want: NewTimeOfDay(7, 30, 0)},
		{in: "23:59:59.999999", want: NewTimeOfDay(23, 59, 59)},
		{in: " 00:00:01 ", want: 1},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "24:00:00", "noon", "12:60"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestTimeOfDay_StringAndJSON(t *testing.T) {
	tod := NewTimeOfDay(9, 5, 7)
	assert.Equal(t, "09:05:07", tod.String())

	data, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.Equal(t, `"09:05:07"`, string(data))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"18:30"`), &back))
	assert.Equal(t, NewTimeOfDay(18, 30, 0), back)

	assert.Error(t, json.Unmarshal([]byte(`1800`), &back))
}

func TestTimeOfDayOf_UsesOwnZone(t *testing.T) {
	zone := time.FixedZone("CST", 8*60*60)
	at := time.Date(2026, 7, 1, 4, 0, 0, 0, time.UTC).In(zone)

	assert.Equal(t, NewTimeOfDay(12, 0, 0), TimeOfDayOf(at))
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		caller bool
	}{
		{err: fmt.Errorf("%w: bed 1", ErrNotFound), code: "NOT_FOUND", caller: true},
		{err: ErrInvalidReference, code: "INVALID_REFERENCE", caller: true},
		{err: ErrInvalidInput, code: "INVALID_INPUT", caller: true},
		{err: ErrCapacityExceeded, code: "CAPACITY_EXCEEDED", caller: true},
		{err: ErrConflictingUpdate, code: "CONFLICTING_UPDATE", caller: true},
		{err: fmt.Errorf("%w: timeout", ErrStoreUnavailable), code: "STORE_UNAVAILABLE", caller: false},
		{err: fmt.Errorf("boom"), code: "INTERNAL", caller: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, ErrorCode(tt.err))
		assert.Equal(t, tt.caller, IsCallerError(tt.err), tt.code)
	}
}
