package nullable

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatJSON(t *testing.T) {
	testData := map[string]struct {
		val      Float
		expected string
	}{
		"finite":       {val: 1.5, expected: "1.5"},
		"nan":          {val: Float(math.NaN()), expected: "null"},
		"positive inf": {val: Float(math.Inf(1)), expected: "null"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			out, err := json.Marshal(td.val)
			require.NoError(t, err)
			assert.Equal(t, td.expected, string(out))
		})
	}

	var f Float
	require.NoError(t, json.Unmarshal([]byte("null"), &f))
	assert.True(t, math.IsNaN(float64(f)))
	require.NoError(t, json.Unmarshal([]byte("2.25"), &f))
	assert.Equal(t, Float(2.25), f)
}

func TestFloatsJSON(t *testing.T) {
	type payload struct {
		Values Floats `json:"values"`
	}

	out, err := json.Marshal(payload{Values: Floats{1, math.NaN(), 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":[1,null,3]}`, string(out))

	var p payload
	require.NoError(t, json.Unmarshal(out, &p))
	require.Len(t, p.Values, 3)
	assert.Equal(t, 1.0, p.Values[0])
	assert.True(t, math.IsNaN(p.Values[1]))
	assert.Equal(t, 3.0, p.Values[2])

	out, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":null}`, string(out))
}
