package osmlinks

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestFindCentroid(t *testing.T) {
	line := []orb.Point{
		{37.396747, 55.8321},
		{37.397111, 55.831987},
		{37.397222, 55.831927},
		{37.397322, 55.831851},
		{37.397384, 55.83177},
		{37.397415, 55.831684},
		{37.397407, 55.831605},
		{37.397363, 55.831525},
		{37.397283, 55.83144},
		{37.39717, 55.831367},
		{37.397001, 55.831313},
		{37.39682, 55.831286},
		{37.39662, 55.83129},
		{37.396464, 55.831311},
		{37.396345, 55.831346},
		{37.396202, 55.83141},
		{37.396123, 55.831459},
		{37.396059, 55.831517},
		{37.396013, 55.831591},
		{37.395989, 55.831674},
	}
	centroid := findCentroid(line)
	assert.InDelta(t, 37.39680299905517, centroid.Lon(), 1e-9, "Correct centroid longitude")
	assert.InDelta(t, 55.83157265108678, centroid.Lat(), 1e-9, "Correct centroid latitude")

	assert.Equal(t, orb.Point{}, findCentroid(nil))
	assert.Equal(t, orb.Point{1, 2}, findCentroid([]orb.Point{{1, 2}}))
}

func TestHeadingDeviation(t *testing.T) {
	cases := []struct {
		from, to, expected float64
	}{
		{0, 0, 0},
		{10, 50, 40},
		{50, 10, 40},
		{350, 10, 20},
		{10, 350, 20},
		{-170, 170, 20},
		{0, 180, 180},
		{90, -90, 180},
		{45, 225, 180},
		{-45, 44, 89},
	}
	for _, c := range cases {
		assert.InDelta(t, c.expected, headingDeviation(c.from, c.to), 1e-9, "from %f to %f", c.from, c.to)
	}
}
