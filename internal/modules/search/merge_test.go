package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placemap/internal/maps"
	"placemap/internal/modules/place"
)

func ids(list []place.Summary) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestMerge_ExternalIDUsesLocalRecordOnce(t *testing.T) {
	local := []place.Summary{
		{ID: "local-1", Name: "ATM A", Latitude: 19.0, Longitude: 72.0, ExternalID: "g-a"},
	}
	known := map[string]place.Summary{
		"g-a": local[0],
		"g-b": {ID: "local-2", Name: "ATM B", Latitude: 19.2, Longitude: 72.2, ExternalID: "g-b"},
	}
	external := []maps.ExternalPlace{
		{ExternalID: "g-a", Name: "ATM A (google)", Latitude: 19.0, Longitude: 72.0},
		{ExternalID: "g-b", Name: "ATM B (google)", Latitude: 19.2, Longitude: 72.2},
		{ExternalID: "g-b", Name: "ATM B again", Latitude: 19.2, Longitude: 72.2},
	}

	got := Merge(local, external, known)
	assert.Equal(t, []string{"local-1", "local-2"}, ids(got))
	assert.Equal(t, "ATM B", got[1].Name)
}

func TestMerge_StoredCopyNearOtherLocalRowDropped(t *testing.T) {
	local := []place.Summary{{ID: "csv-pump", Name: "IOC Pump", Latitude: 21.1492, Longitude: 79.0835}}
	known := map[string]place.Summary{
		"g-pump": {ID: "cached-pump", Name: "IOC Petrol Pump", Latitude: 21.1494, Longitude: 79.0837, ExternalID: "g-pump"},
	}
	external := []maps.ExternalPlace{{ExternalID: "g-pump", Name: "IOC Petrol Pump", Latitude: 21.1494, Longitude: 79.0837}}

	got := Merge(local, external, known)
	assert.Equal(t, []string{"csv-pump"}, ids(got))
}

func TestMerge_ProximityDedup(t *testing.T) {
	local := []place.Summary{{ID: "local-1", Latitude: 21.1458, Longitude: 79.0882}}
	external := []maps.ExternalPlace{
		{ExternalID: "near", Latitude: 21.1460, Longitude: 79.0885},
		{ExternalID: "far-lat", Latitude: 21.1470, Longitude: 79.0882},
		{ExternalID: "far-lng", Latitude: 21.1458, Longitude: 79.0900},
		{ExternalID: "next-to-far-lat", Latitude: 21.1471, Longitude: 79.0883},
	}

	got := Merge(local, external, nil)
	assert.Equal(t, []string{"local-1", "far-lat", "far-lng"}, ids(got))

	for i := range got {
		for j := i + 1; j < len(got); j++ {
			tooClose := abs(got[i].Latitude-got[j].Latitude) < ProximityDegrees &&
				abs(got[i].Longitude-got[j].Longitude) < ProximityDegrees
			assert.False(t, tooClose, "%s and %s are within the proximity threshold", got[i].ID, got[j].ID)
		}
	}
}

func TestMerge_KeepsOrderAndCity(t *testing.T) {
	local := []place.Summary{{ID: "b"}, {ID: "a", Latitude: 1, Longitude: 1}}
	external := []maps.ExternalPlace{
		{ExternalID: "z", Latitude: 10, Longitude: 10, Address: "12 MG Road, Pune, Maharashtra, India"},
		{ExternalID: "y", Latitude: 20, Longitude: 20},
	}
	got := Merge(local, external, map[string]place.Summary{})
	assert.Equal(t, []string{"b", "a", "z", "y"}, ids(got))
	require.NotNil(t, got[2].City)
	assert.Equal(t, "Pune", *got[2].City)
	assert.Nil(t, got[3].City)
	assert.Equal(t, "z", got[2].ExternalID)
}

func TestMerge_Idempotent(t *testing.T) {
	local := []place.Summary{{ID: "l", Latitude: 5, Longitude: 5}}
	external := []maps.ExternalPlace{{ExternalID: "e", Latitude: 6, Longitude: 6}}

	once := Merge(local, external, nil)
	twice := Merge(once, external, nil)
	assert.Equal(t, once, twice)
}

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12 MG Road, Pune, Maharashtra, India", "Pune"},
		{"Pune, Maharashtra, India", "Pune"},
		{"Maharashtra, India", "Maharashtra"},
		{", , India", ""},
		{"India", ""},
		{"", ""},
		{"Shop 4,  Andheri West ,Mumbai, Maharashtra 400053, India", "Mumbai"},
	}
	for _, tt := range tests {
		got := CityFromAddress(tt.in)
		if tt.want == "" {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.Equal(t, tt.want, *got, tt.in)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
