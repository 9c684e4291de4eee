package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineSamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(14.5995, 120.9842, 14.5995, 120.9842))
	assert.Equal(t, 0.0, Haversine(0, 0, 0, 0))
	assert.Equal(t, 0.0, Haversine(-90, 180, -90, 180))
}

func TestHaversineSnapsTinyDistancesToZero(t *testing.T) {
	// Roughly 15 meters apart, well under the 0.1 km snap threshold
	assert.Equal(t, 0.0, Haversine(14.5995, 120.9842, 14.5996, 120.9843))
}

func TestHaversineKnownDistances(t *testing.T) {
	// Manila city hall to a point near Cabanatuan, roughly 48 km
	d := Haversine(14.5995, 120.9842, 15.0, 121.0)
	assert.InDelta(t, 44.5, d, 1.0)
	assert.Greater(t, d, 40.0)

	// Manila to Quezon City memorial circle, roughly 11 km
	d = Haversine(14.5995, 120.9842, 14.6760, 121.0437)
	assert.InDelta(t, 10.7, d, 1.0)
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := Haversine(14.5995, 120.9842, 15.0, 121.0)
	b := Haversine(15.0, 121.0, 14.5995, 120.9842)
	assert.Equal(t, a, b)
}
