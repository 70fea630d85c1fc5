package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Bangkok city center to Don Mueang airport, roughly 21 km.
	d := DistanceKm(13.7563, 100.5018, 13.9126, 100.6068)
	assert.InDelta(t, 20.8, d, 0.5)
}

func TestDistanceKmZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(13.7563, 100.5018, 13.7563, 100.5018))
}

func TestDistanceKmRoundsToTwoDecimals(t *testing.T) {
	d := DistanceKm(0, 0, 0.01, 0.01)
	assert.Equal(t, d, float64(int(d*100))/100)
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(51.5074, -0.1278, 48.8566, 2.3522)
	b := DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.Equal(t, a, b)
	// London to Paris is about 344 km.
	assert.InDelta(t, 344, a, 2)
}
