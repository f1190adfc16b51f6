package osmlinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadClassTableTotalOrder(t *testing.T) {
	table := DefaultRoadClassTable()
	classes := table.Classes()
	require.Len(t, classes, 12)
	assert.Equal(t, []HighwayType{
		HIGHWAY_MOTORWAY, HIGHWAY_MOTORWAY_LINK,
		HIGHWAY_TRUNK, HIGHWAY_TRUNK_LINK,
		HIGHWAY_PRIMARY, HIGHWAY_PRIMARY_LINK,
		HIGHWAY_SECONDARY, HIGHWAY_SECONDARY_LINK,
		HIGHWAY_TERTIARY, HIGHWAY_TERTIARY_LINK,
		HIGHWAY_UNCLASSIFIED, HIGHWAY_RESIDENTIAL,
	}, classes)
	for i, a := range classes {
		for j, b := range classes {
			if i == j {
				continue
			}
			aFirst := table.Priority(a) < table.Priority(b)
			bFirst := table.Priority(b) < table.Priority(a)
			assert.True(t, aFirst != bFirst, "Exactly one of '%s' and '%s' must be more important", a, b)
			assert.Equal(t, aFirst, table.MoreImportant(a, b))
		}
	}
	assert.Equal(t, rankUnknown, table.Priority(HIGHWAY_FOOTWAY))
	assert.True(t, table.MoreImportant(HIGHWAY_RESIDENTIAL, HIGHWAY_FOOTWAY))
}

func TestRoadClassTableRoundTrip(t *testing.T) {
	table := DefaultRoadClassTable()
	parents := 0
	for _, class := range table.Classes() {
		link, ok := table.LinkFor(class)
		if !ok {
			continue
		}
		parents++
		parent, ok := table.ParentFor(link)
		require.True(t, ok)
		assert.Equal(t, class, parent)
		assert.True(t, table.IsLink(link))
		assert.False(t, table.IsLink(class))
	}
	assert.Equal(t, 5, parents)

	assert.True(t, table.HasLinkEquivalent(HIGHWAY_PRIMARY))
	assert.True(t, table.HasLinkEquivalent(HIGHWAY_PRIMARY_LINK))
	assert.False(t, table.HasLinkEquivalent(HIGHWAY_RESIDENTIAL))
	_, ok := table.LinkFor(HIGHWAY_UNCLASSIFIED)
	assert.False(t, ok)

	expected, ok := table.expectedLink(HIGHWAY_TRUNK)
	require.True(t, ok)
	assert.Equal(t, HIGHWAY_TRUNK_LINK, expected)
	expected, ok = table.expectedLink(HIGHWAY_TRUNK_LINK)
	require.True(t, ok)
	assert.Equal(t, HIGHWAY_TRUNK_LINK, expected)
}

func TestRoadClassTableExplicitLinkRank(t *testing.T) {
	// Link listed explicitly keeps its own position
	table, err := NewRoadClassTable(
		[]HighwayType{HIGHWAY_MOTORWAY, HIGHWAY_PRIMARY, HIGHWAY_MOTORWAY_LINK},
		[]HighwayType{HIGHWAY_MOTORWAY_LINK, HIGHWAY_PRIMARY_LINK, HIGHWAY_RESIDENTIAL_LINK},
		map[HighwayType]HighwayType{
			HIGHWAY_MOTORWAY_LINK: HIGHWAY_MOTORWAY,
			HIGHWAY_PRIMARY_LINK:  HIGHWAY_PRIMARY,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []HighwayType{
		HIGHWAY_MOTORWAY, HIGHWAY_PRIMARY, HIGHWAY_PRIMARY_LINK, HIGHWAY_MOTORWAY_LINK, HIGHWAY_RESIDENTIAL_LINK,
	}, table.Classes())
	_, ok := table.ParentFor(HIGHWAY_RESIDENTIAL_LINK)
	assert.False(t, ok, "Link without parent")
	assert.True(t, table.IsLink(HIGHWAY_RESIDENTIAL_LINK))
}

func TestRoadClassTableConfigurationErrors(t *testing.T) {
	cases := []struct {
		name         string
		priority     []HighwayType
		links        []HighwayType
		linkToParent map[HighwayType]HighwayType
		field        string
	}{
		{"empty priority", nil, nil, nil, "highwayTypes.priorityOrder"},
		{"duplicate class", []HighwayType{HIGHWAY_PRIMARY, HIGHWAY_PRIMARY}, nil, nil, "highwayTypes.priorityOrder"},
		{"undefined class", []HighwayType{HIGHWAY_UNDEFINED}, nil, nil, "highwayTypes.priorityOrder"},
		{
			"parent is not in priority list",
			[]HighwayType{HIGHWAY_MOTORWAY},
			[]HighwayType{HIGHWAY_PRIMARY_LINK},
			map[HighwayType]HighwayType{HIGHWAY_PRIMARY_LINK: HIGHWAY_PRIMARY},
			"highwayTypes.linkToParentCorrespondence",
		},
		{
			"link is not in link types",
			[]HighwayType{HIGHWAY_PRIMARY},
			nil,
			map[HighwayType]HighwayType{HIGHWAY_PRIMARY_LINK: HIGHWAY_PRIMARY},
			"highwayTypes.linkToParentCorrespondence",
		},
		{
			"parent with two links",
			[]HighwayType{HIGHWAY_PRIMARY},
			[]HighwayType{HIGHWAY_PRIMARY_LINK, HIGHWAY_SECONDARY_LINK},
			map[HighwayType]HighwayType{HIGHWAY_PRIMARY_LINK: HIGHWAY_PRIMARY, HIGHWAY_SECONDARY_LINK: HIGHWAY_PRIMARY},
			"highwayTypes.linkToParentCorrespondence",
		},
		{
			"parent is link",
			[]HighwayType{HIGHWAY_PRIMARY, HIGHWAY_PRIMARY_LINK},
			[]HighwayType{HIGHWAY_PRIMARY_LINK, HIGHWAY_SECONDARY_LINK},
			map[HighwayType]HighwayType{HIGHWAY_SECONDARY_LINK: HIGHWAY_PRIMARY_LINK},
			"highwayTypes.linkToParentCorrespondence",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewRoadClassTable(c.priority, c.links, c.linkToParent)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, c.field, cfgErr.Field)
		})
	}
}

func TestParseHighwayType(t *testing.T) {
	class, ok := ParseHighwayType(" Motorway_Link ")
	require.True(t, ok)
	assert.Equal(t, HIGHWAY_MOTORWAY_LINK, class)
	assert.Equal(t, "motorway_link", class.String())

	_, ok = ParseHighwayType("runway")
	assert.False(t, ok)
	_, ok = ParseHighwayType("")
	assert.False(t, ok)

	types, badIdx := parseHighwayTypes([]string{"trunk", "busway"})
	assert.Equal(t, -1, badIdx)
	assert.Equal(t, []HighwayType{HIGHWAY_TRUNK, HIGHWAY_BUSWAY}, types)
	_, badIdx = parseHighwayTypes([]string{"trunk", "nope"})
	assert.Equal(t, 1, badIdx)
}
