package schema_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeight(t *testing.T) {
	tests := []struct {
		name    string
		bps     int
		wantErr bool
	}{
		{"zero", 0, false},
		{"full", 10000, false},
		{"middle", 4000, false},
		{"negative", -1, true},
		{"over full", 10001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := schema.NewWeight(tt.bps)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bps, w.BPS())
		})
	}
}

func TestWeightFromPercent(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		bps     int
		wantErr bool
	}{
		{"whole", 40, 4000, false},
		{"two decimals", 33.33, 3333, false},
		{"rounds", 12.345, 1235, false},
		{"full", 100, 10000, false},
		{"over", 100.01, 0, true},
		{"negative", -0.5, 0, true},
		{"nan", math.NaN(), 0, true},
		{"inf", math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := schema.WeightFromPercent(tt.percent)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bps, w.BPS())
		})
	}
}

func TestWeightPercentAndString(t *testing.T) {
	w := schema.MustWeight(3333)
	assert.InDelta(t, 33.33, w.Percent(), 1e-9)
	assert.Equal(t, "33.33%", w.String())
	assert.Panics(t, func() { schema.MustWeight(20000) })
}

func TestNewOrderIndex(t *testing.T) {
	o, err := schema.NewOrderIndex(3)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Int())

	_, err = schema.NewOrderIndex(-1)
	assert.Error(t, err)
}

func TestOrderIndexMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Order schema.OrderIndex `json:"order"`
	}{Order: mustOrder(t, 7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order":7}`, string(data))
}

func mustOrder(t *testing.T, v int) schema.OrderIndex {
	t.Helper()
	o, err := schema.NewOrderIndex(v)
	require.NoError(t, err)
	return o
}
