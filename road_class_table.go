package osmlinks

import (
	"math"
	"sort"
)

const (
	// Rank for classes which are not known to the table
	rankUnknown = math.MaxInt32
)

// RoadClassTable holds total order over road classes and link <-> parent correspondence
//
// Immutable after construction and safe for concurrent use
type RoadClassTable struct {
	ranks        map[HighwayType]int
	ordered      []HighwayType
	linkTypes    map[HighwayType]struct{}
	linkByParent map[HighwayType]HighwayType
	parentByLink map[HighwayType]HighwayType
}

// NewRoadClassTable builds table from ordered list of classes (most important first), set of link classes
// and link -> parent mapping.
//
// Every link class not present in priority list is ranked right after its parent.
// Returns *ConfigurationError when mapping references unknown classes or is not one-to-one
func NewRoadClassTable(priority []HighwayType, linkTypes []HighwayType, linkToParent map[HighwayType]HighwayType) (*RoadClassTable, error) {
	if len(priority) == 0 {
		return nil, configurationErrorf("highwayTypes.priorityOrder", "must contain at least one class")
	}
	table := &RoadClassTable{
		ranks:        make(map[HighwayType]int, len(priority)+len(linkTypes)),
		ordered:      make([]HighwayType, 0, len(priority)+len(linkTypes)),
		linkTypes:    make(map[HighwayType]struct{}, len(linkTypes)),
		linkByParent: make(map[HighwayType]HighwayType, len(linkToParent)),
		parentByLink: make(map[HighwayType]HighwayType, len(linkToParent)),
	}

	listed := make(map[HighwayType]struct{}, len(priority))
	for _, class := range priority {
		if class == HIGHWAY_UNDEFINED {
			return nil, configurationErrorf("highwayTypes.priorityOrder", "undefined class is not allowed")
		}
		if _, ok := listed[class]; ok {
			return nil, configurationErrorf("highwayTypes.priorityOrder", "class '%s' is listed more than once", class)
		}
		listed[class] = struct{}{}
	}
	for _, class := range linkTypes {
		if class == HIGHWAY_UNDEFINED {
			return nil, configurationErrorf("highwayTypes.linkTypes", "undefined class is not allowed")
		}
		if _, ok := table.linkTypes[class]; ok {
			return nil, configurationErrorf("highwayTypes.linkTypes", "class '%s' is listed more than once", class)
		}
		table.linkTypes[class] = struct{}{}
	}

	// Sort links to get deterministic error reporting
	links := make([]HighwayType, 0, len(linkToParent))
	for link := range linkToParent {
		links = append(links, link)
	}
	sort.Slice(links, func(i, j int) bool { return links[i] < links[j] })
	for _, link := range links {
		parent := linkToParent[link]
		if _, ok := table.linkTypes[link]; !ok {
			return nil, configurationErrorf("highwayTypes.linkToParentCorrespondence", "link class '%s' is not listed in link types", link)
		}
		if _, ok := listed[parent]; !ok {
			return nil, configurationErrorf("highwayTypes.linkToParentCorrespondence", "parent class '%s' of '%s' is not listed in priority order", parent, link)
		}
		if _, ok := table.linkTypes[parent]; ok {
			return nil, configurationErrorf("highwayTypes.linkToParentCorrespondence", "parent class '%s' of '%s' is a link class itself", parent, link)
		}
		if existing, ok := table.linkByParent[parent]; ok {
			return nil, configurationErrorf("highwayTypes.linkToParentCorrespondence", "parent class '%s' has two links: '%s' and '%s'", parent, existing, link)
		}
		table.linkByParent[parent] = link
		table.parentByLink[link] = parent
	}

	for _, class := range priority {
		table.assignRank(class)
		if link, ok := table.linkByParent[class]; ok {
			if _, explicit := listed[link]; !explicit {
				table.assignRank(link)
			}
		}
	}
	// Links without parent are still part of the table, just the least important ones
	for _, class := range linkTypes {
		table.assignRank(class)
	}
	return table, nil
}

func (table *RoadClassTable) assignRank(class HighwayType) {
	if _, ok := table.ranks[class]; ok {
		return
	}
	table.ranks[class] = len(table.ordered)
	table.ordered = append(table.ordered, class)
}

// Priority returns rank of the class. Lower value means more important class
func (table *RoadClassTable) Priority(class HighwayType) int {
	if rank, ok := table.ranks[class]; ok {
		return rank
	}
	return rankUnknown
}

// MoreImportant returns true when a has strictly higher priority than b
func (table *RoadClassTable) MoreImportant(a, b HighwayType) bool {
	return table.Priority(a) < table.Priority(b)
}

// LinkFor returns link class for given parent class
func (table *RoadClassTable) LinkFor(parent HighwayType) (HighwayType, bool) {
	link, ok := table.linkByParent[parent]
	return link, ok
}

// ParentFor returns parent class for given link class
func (table *RoadClassTable) ParentFor(link HighwayType) (HighwayType, bool) {
	parent, ok := table.parentByLink[link]
	return parent, ok
}

// IsLink checks if class is configured as link class
func (table *RoadClassTable) IsLink(class HighwayType) bool {
	_, ok := table.linkTypes[class]
	return ok
}

// HasLinkEquivalent returns true for link classes and for classes with configured link
func (table *RoadClassTable) HasLinkEquivalent(class HighwayType) bool {
	if table.IsLink(class) {
		return true
	}
	_, ok := table.linkByParent[class]
	return ok
}

// expectedLink returns link class which should be used to connect to given class
func (table *RoadClassTable) expectedLink(class HighwayType) (HighwayType, bool) {
	if table.IsLink(class) {
		return class, true
	}
	return table.LinkFor(class)
}

// Classes returns configured classes ordered by priority. Returns new slice
func (table *RoadClassTable) Classes() []HighwayType {
	result := make([]HighwayType, len(table.ordered))
	copy(result, table.ordered)
	return result
}
