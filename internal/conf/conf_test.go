package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"5m"`, 5 * time.Minute, false},
		{"milliseconds", `"100ms"`, 100 * time.Millisecond, false},
		{"nanoseconds number", `1000`, time.Microsecond, false},
		{"garbage", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.AsDuration())
		})
	}
}

func TestBootstrap_Unmarshal(t *testing.T) {
	// Arrange
	raw := `{
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "2s"}},
		"data": {"cache": {"search_ttl": "10m", "lru_size": 512}},
		"events": {"nats_url": "nats://localhost:4222", "batch_size": 50}
	}`

	// Act
	var bc Bootstrap
	err := json.Unmarshal([]byte(raw), &bc)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", bc.Server.Http.Addr)
	assert.Equal(t, 2*time.Second, bc.Server.Http.Timeout.AsDuration())
	assert.Equal(t, 10*time.Minute, bc.Data.Cache.SearchTtl.AsDuration())
	assert.Nil(t, bc.Data.Cache.ListingTtl)
	assert.Zero(t, bc.Data.Cache.ListingTtl.AsDuration())
	assert.Equal(t, 50, bc.Events.BatchSize)
}
