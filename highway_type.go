package osmlinks

import (
	"strings"
)

// HighwayType is a functional road class taken from OSM `highway` tag
type HighwayType uint16

const (
	HIGHWAY_MOTORWAY = HighwayType(iota + 1)
	HIGHWAY_MOTORWAY_LINK
	HIGHWAY_TRUNK
	HIGHWAY_TRUNK_LINK
	HIGHWAY_PRIMARY
	HIGHWAY_PRIMARY_LINK
	HIGHWAY_SECONDARY
	HIGHWAY_SECONDARY_LINK
	HIGHWAY_TERTIARY
	HIGHWAY_TERTIARY_LINK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_RESIDENTIAL_LINK
	HIGHWAY_LIVING_STREET
	HIGHWAY_SERVICE
	HIGHWAY_SERVICES
	HIGHWAY_CYCLEWAY
	HIGHWAY_FOOTWAY
	HIGHWAY_PEDESTRIAN
	HIGHWAY_STEPS
	HIGHWAY_TRACK
	HIGHWAY_UNCLASSIFIED
	HIGHWAY_ROAD
	HIGHWAY_PATH
	HIGHWAY_BRIDLEWAY
	HIGHWAY_BUS_GUIDEWAY
	HIGHWAY_BUSWAY
	HIGHWAY_RACEWAY

	// Lowest class: missing or unknown `highway` value
	HIGHWAY_UNDEFINED = HighwayType(0)
)

func (iotaIdx HighwayType) String() string {
	if int(iotaIdx) >= len(highwayNames) {
		return highwayNames[HIGHWAY_UNDEFINED]
	}
	return highwayNames[iotaIdx]
}

var (
	highwayNames = [...]string{"undefined", "motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link", "secondary", "secondary_link", "tertiary", "tertiary_link", "residential", "residential_link", "living_street", "service", "services", "cycleway", "footway", "pedestrian", "steps", "track", "unclassified", "road", "path", "bridleway", "bus_guideway", "busway", "raceway"}

	highwaysTypes = map[string]HighwayType{
		"motorway":         HIGHWAY_MOTORWAY,
		"motorway_link":    HIGHWAY_MOTORWAY_LINK,
		"trunk":            HIGHWAY_TRUNK,
		"trunk_link":       HIGHWAY_TRUNK_LINK,
		"primary":          HIGHWAY_PRIMARY,
		"primary_link":     HIGHWAY_PRIMARY_LINK,
		"secondary":        HIGHWAY_SECONDARY,
		"secondary_link":   HIGHWAY_SECONDARY_LINK,
		"tertiary":         HIGHWAY_TERTIARY,
		"tertiary_link":    HIGHWAY_TERTIARY_LINK,
		"residential":      HIGHWAY_RESIDENTIAL,
		"residential_link": HIGHWAY_RESIDENTIAL_LINK,
		"living_street":    HIGHWAY_LIVING_STREET,
		"service":          HIGHWAY_SERVICE,
		"services":         HIGHWAY_SERVICES,
		"cycleway":         HIGHWAY_CYCLEWAY,
		"footway":          HIGHWAY_FOOTWAY,
		"pedestrian":       HIGHWAY_PEDESTRIAN,
		"steps":            HIGHWAY_STEPS,
		"track":            HIGHWAY_TRACK,
		"unclassified":     HIGHWAY_UNCLASSIFIED,
		"road":             HIGHWAY_ROAD,
		"path":             HIGHWAY_PATH,
		"bridleway":        HIGHWAY_BRIDLEWAY,
		"bus_guideway":     HIGHWAY_BUS_GUIDEWAY,
		"busway":           HIGHWAY_BUSWAY,
		"raceway":          HIGHWAY_RACEWAY,
	}
)

// ParseHighwayType returns class for given `highway` tag value. Second value is false for unknown values
func ParseHighwayType(str string) (HighwayType, bool) {
	found, ok := highwaysTypes[strings.ToLower(strings.TrimSpace(str))]
	return found, ok
}

// parseHighwayTypes converts list of tag values. Returns index of first unknown value as second result (or -1)
func parseHighwayTypes(values []string) ([]HighwayType, int) {
	result := make([]HighwayType, 0, len(values))
	for i, value := range values {
		highway, ok := ParseHighwayType(value)
		if !ok {
			return nil, i
		}
		result = append(result, highway)
	}
	return result, -1
}
