package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_ValueAndScan(t *testing.T) {
	v, err := Tags{" flood ", "", "wash"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "flood,wash", v)

	tests := []struct {
		name string
		src  any
		want Tags
	}{
		{"nil", nil, Tags{}},
		{"string", "a, b ,c", Tags{"a", "b", "c"}},
		{"bytes", []byte("health"), Tags{"health"}},
		{"empty", "", Tags{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Tags
			require.NoError(t, got.Scan(tt.src))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Tags
	assert.Error(t, bad.Scan(42))
}

func TestTags_JSON(t *testing.T) {
	var a Announcement
	require.NoError(t, json.Unmarshal([]byte(`{"tags":"flood, shelter"}`), &a))
	assert.Equal(t, Tags{"flood", "shelter"}, a.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":["one"," two "]}`), &a))
	assert.Equal(t, Tags{"one", "two"}, a.Tags)

	assert.Error(t, json.Unmarshal([]byte(`{"tags":7}`), &a))

	out, err := json.Marshal(Announcement{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tags":[]`)
}

func TestApplyDefaults(t *testing.T) {
	now := time.Date(2025, 10, 28, 12, 0, 0, 0, time.UTC)

	a := &Announcement{}
	a.ApplyDefaults(now)
	assert.Equal(t, now, a.Date)
	assert.Equal(t, PriorityNormal, a.Priority)

	explicit := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	a = &Announcement{Date: explicit, Priority: PriorityHigh}
	a.ApplyDefaults(now)
	assert.Equal(t, explicit, a.Date)
	assert.Equal(t, PriorityHigh, a.Priority)

	c := &Contact{}
	c.ApplyDefaults(now)
	assert.Equal(t, LocationTypeField, c.LocationType)
	assert.Equal(t, ContactStatusActive, c.Status)
}
