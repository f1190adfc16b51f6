package osmlinks

import (
	"context"
	"os"
	"sync"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// GeoJSONReporter collects flags into FeatureCollection which is written to file on Close
type GeoJSONReporter struct {
	sync.Mutex
	fname      string
	collection *geojson.FeatureCollection
}

func NewGeoJSONReporter(fname string) *GeoJSONReporter {
	return &GeoJSONReporter{
		fname:      fname,
		collection: geojson.NewFeatureCollection(),
	}
}

func (reporter *GeoJSONReporter) Report(ctx context.Context, flag *Flag) error {
	feature := geojson.NewMultiLineStringFeature(multiLineStringCoordinates(flag.Geom)...)
	feature.ID = flag.WayID
	feature.SetProperty("run_id", flag.RunID.String())
	feature.SetProperty("check", flag.CheckName)
	feature.SetProperty("osm_way_id", int64(flag.WayID))
	feature.SetProperty("edges", flag.Edges)
	feature.SetProperty("verdict", flag.Verdict.Type.String())
	feature.SetProperty("highway", flag.Verdict.Highway.String())
	if flag.Verdict.Suggested != HIGHWAY_UNDEFINED {
		feature.SetProperty("suggested", flag.Verdict.Suggested.String())
	}
	if flag.Verdict.Access != "" {
		feature.SetProperty("access", flag.Verdict.Access)
	}
	feature.SetProperty("length_meters", flag.Verdict.LengthMeters)
	if flag.Verdict.LimitMeters > 0 {
		feature.SetProperty("limit_meters", flag.Verdict.LimitMeters)
	}
	feature.SetProperty("geohash", flag.Geohash)
	feature.SetProperty("instruction", flag.Instruction)

	reporter.Lock()
	reporter.collection.AddFeature(feature)
	reporter.Unlock()
	return nil
}

// Close writes collected features to file
func (reporter *GeoJSONReporter) Close() error {
	reporter.Lock()
	defer reporter.Unlock()
	data, err := reporter.collection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal features")
	}
	err = os.WriteFile(reporter.fname, data, 0644)
	if err != nil {
		return errors.Wrap(err, "Can't write file")
	}
	return nil
}

func multiLineStringCoordinates(geom orb.MultiLineString) [][][]float64 {
	result := make([][][]float64, len(geom))
	for i, line := range geom {
		pts := make([][]float64, len(line))
		for j, pt := range line {
			pts[j] = []float64{pt.Lon(), pt.Lat()}
		}
		result[i] = pts
	}
	return result
}
