package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type holder struct {
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `{"timeout":"10s"}`, want: 10 * time.Second},
		{name: "nanoseconds", input: `{"timeout":1500}`, want: 1500},
		{name: "null", input: `{"timeout":null}`, want: 0},
		{name: "bad string", input: `{"timeout":"ten"}`, wantErr: true},
		{name: "bool", input: `{"timeout":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h holder
			err := json.Unmarshal([]byte(tt.input), &h)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Timeout.Duration)
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 5m\n"), &h))
	assert.Equal(t, 5*time.Minute, h.Timeout.Duration)

	require.NoError(t, yaml.Unmarshal([]byte("timeout: 2000\n"), &h))
	assert.Equal(t, time.Duration(2000), h.Timeout.Duration)

	assert.Error(t, yaml.Unmarshal([]byte("timeout: [1]\n"), &h))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(holder{Timeout: Duration{90 * time.Second}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timeout":"1m30s"}`, string(b))
}
