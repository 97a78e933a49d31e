package window_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/window"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func utcPolicy() window.Policy {
	p := window.DefaultPolicy()
	p.Location = time.UTC
	return p
}

// at returns the epoch-ms timestamp of the given UTC wall-clock time.
// 2026-03-09 is a Monday.
func at(day, hour, min int) int64 {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC).UnixMilli()
}

func matchAt(id int64, ts int64) model.Match {
	return model.Match{ID: id, Timestamp: ts}
}

// ─── InWindow ─────────────────────────────────────────────────────────────────

func TestInWindow(t *testing.T) {
	p := utcPolicy()
	cases := []struct {
		name string
		ts   int64
		want bool
	}{
		{"monday at start hour", at(9, 9, 0), true},
		{"monday just before start", at(9, 8, 59), false},
		{"friday last minute", at(13, 17, 59), true},
		{"friday end hour is exclusive", at(13, 18, 0), false},
		{"saturday mid-day", at(14, 12, 0), false},
		{"sunday mid-day", at(15, 12, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, window.InWindow(tc.ts, p))
		})
	}
}

func TestInWindowUsesPolicyLocation(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	p := window.DefaultPolicy()
	p.Location = sp

	// 11:00 UTC on a Monday is 08:00 in São Paulo (UTC-3).
	assert.False(t, window.InWindow(at(9, 11, 0), p))
	// 12:00 UTC is 09:00 local.
	assert.True(t, window.InWindow(at(9, 12, 0), p))
}

func TestInWindowIsReferentiallyTransparent(t *testing.T) {
	p := utcPolicy()
	ts := at(10, 14, 30)
	assert.Equal(t, window.InWindow(ts, p), window.InWindow(ts, p))
}

func TestInWindowCustomWeekend(t *testing.T) {
	p := window.Policy{
		Weekdays:  []time.Weekday{time.Saturday, time.Sunday},
		StartHour: 0,
		EndHour:   24,
		Location:  time.UTC,
	}
	assert.True(t, window.InWindow(at(14, 0, 0), p))
	assert.True(t, window.InWindow(at(15, 23, 59), p))
	assert.False(t, window.InWindow(at(9, 12, 0), p))
}

// ─── Filter / Active ──────────────────────────────────────────────────────────

func TestFilterIsIdempotent(t *testing.T) {
	p := utcPolicy()
	matches := []model.Match{
		matchAt(1, at(9, 10, 0)),
		matchAt(2, at(9, 20, 0)),
		matchAt(3, at(14, 10, 0)),
		matchAt(4, at(12, 17, 0)),
	}

	once := window.Filter(matches, p)
	twice := window.Filter(once, p)
	assert.Equal(t, once, twice)
	require.Len(t, once, 2)
	assert.Equal(t, int64(1), once[0].ID)
	assert.Equal(t, int64(4), once[1].ID)
	assert.Len(t, matches, 4, "input is not modified")
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, window.Filter(nil, utcPolicy()))
}

func TestActive(t *testing.T) {
	p := utcPolicy()
	matches := []model.Match{matchAt(1, at(9, 10, 0)), matchAt(2, at(14, 10, 0))}

	assert.Len(t, window.Active(matches, window.ModeAll, p), 2)
	assert.Len(t, window.Active(matches, window.ModeWorkday, p), 1)
}

// ─── Policy / Mode ────────────────────────────────────────────────────────────

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, window.DefaultPolicy().Validate())

	bad := window.DefaultPolicy()
	bad.StartHour, bad.EndHour = 18, 9
	assert.Error(t, bad.Validate())

	bad = window.DefaultPolicy()
	bad.EndHour = 25
	assert.Error(t, bad.Validate())

	bad = window.DefaultPolicy()
	bad.Weekdays = []time.Weekday{7}
	assert.Error(t, bad.Validate())
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "Mon,Tue,Wed,Thu,Fri 09:00-18:00", window.DefaultPolicy().String())
}

func TestParseMode(t *testing.T) {
	m, err := window.ParseMode("ALL")
	require.NoError(t, err)
	assert.Equal(t, window.ModeAll, m)

	m, err = window.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, window.ModeWorkday, m)

	_, err = window.ParseMode("weekends")
	assert.Error(t, err)

	assert.Equal(t, window.ModeAll, window.ModeWorkday.Toggle())
	assert.Equal(t, window.ModeWorkday, window.ModeAll.Toggle())
}

// ─── ParseWeekdays ────────────────────────────────────────────────────────────

func TestParseWeekdays(t *testing.T) {
	got, err := window.ParseWeekdays("mon, Tuesday,3,thu,5,mon")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, got)

	got, err = window.ParseWeekdays("0,sat")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, got)

	for _, bad := range []string{"", " , ", "7", "mo", "funday"} {
		_, err := window.ParseWeekdays(bad)
		assert.Error(t, err, bad)
	}
}
