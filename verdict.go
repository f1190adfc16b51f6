package osmlinks

// VerdictType Outcome of way evaluation
type VerdictType uint16

const (
	VERDICT_OK = VerdictType(iota)
	VERDICT_TOO_LONG
	VERDICT_WRONG_CLASS
	VERDICT_TOO_LONG_AND_WRONG_CLASS
	VERDICT_NO_CONNECTION_EITHER_END
	VERDICT_NO_LINK_EQUIVALENT_EITHER_END
	VERDICT_ACCESS_ON_MOTORWAY
	VERDICT_ACCESS_ON_FOOTWAY
)

func (iotaIdx VerdictType) String() string {
	return [...]string{"ok", "too_long", "wrong_class", "too_long_and_wrong_class", "no_connection_either_end", "no_link_equivalent_either_end", "access_on_motorway", "access_on_footway"}[iotaIdx]
}

// Verdict is structured result of evaluation. Fields which are not relevant for the type are zero
type Verdict struct {
	Type VerdictType
	// Measured length of the whole way and configured maximum
	LengthMeters float64
	LimitMeters  float64
	// Class the way should have
	Suggested HighwayType
	// Class of the evaluated way
	Highway HighwayType
	// Value of `access` tag for access verdicts
	Access string
}

// Flagged returns true when verdict describes an issue to be reported
func (v Verdict) Flagged() bool {
	switch v.Type {
	case VERDICT_TOO_LONG, VERDICT_WRONG_CLASS, VERDICT_TOO_LONG_AND_WRONG_CLASS, VERDICT_ACCESS_ON_MOTORWAY, VERDICT_ACCESS_ON_FOOTWAY:
		return true
	default:
		return false
	}
}

// Unresolved returns true when way could not be classified because of its surroundings
func (v Verdict) Unresolved() bool {
	return v.Type == VERDICT_NO_CONNECTION_EITHER_END || v.Type == VERDICT_NO_LINK_EQUIVALENT_EITHER_END
}

func okVerdict() Verdict {
	return Verdict{Type: VERDICT_OK}
}

func noConnectionVerdict() Verdict {
	return Verdict{Type: VERDICT_NO_CONNECTION_EITHER_END}
}

func noLinkEquivalentVerdict() Verdict {
	return Verdict{Type: VERDICT_NO_LINK_EQUIVALENT_EITHER_END}
}

func tooLongVerdict(length, limit float64) Verdict {
	return Verdict{Type: VERDICT_TOO_LONG, LengthMeters: length, LimitMeters: limit}
}

func wrongClassVerdict(suggested HighwayType) Verdict {
	return Verdict{Type: VERDICT_WRONG_CLASS, Suggested: suggested}
}

func tooLongAndWrongClassVerdict(length, limit float64, suggested HighwayType) Verdict {
	return Verdict{Type: VERDICT_TOO_LONG_AND_WRONG_CLASS, LengthMeters: length, LimitMeters: limit, Suggested: suggested}
}
