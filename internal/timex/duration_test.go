package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalString(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"150ms"`), &d))
	assert.Equal(t, 150*time.Millisecond, d.Duration)
}

func TestDuration_UnmarshalNanoseconds(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`5000000000`), &d))
	assert.Equal(t, 5*time.Second, d.Duration)
}

func TestDuration_UnmarshalInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration{Duration: 5 * time.Second}
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(b))
}
