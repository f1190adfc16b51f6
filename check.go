package osmlinks

// Check is a single validation rule applied to the ways of the graph
type Check interface {
	// Name is a stable identifier used in flagged registry keys and reports
	Name() string
	// Candidate returns true if the edge should be evaluated by the check
	Candidate(edge *Edge) bool
	// Evaluate returns the way containing the edge and its verdict
	Evaluate(id EdgeID) (Way, Verdict)
	// Instruction renders human readable message for the verdict
	Instruction(verdict Verdict) string
}

const (
	LINK_CHECK_NAME = "BadHighwayLinkCheck"
)

// LinkCheck flags link ways which are too long or carry class inconsistent with connected roads
type LinkCheck struct {
	engine *LinkEngine
}

// NewLinkCheck wraps engine into Check
func NewLinkCheck(engine *LinkEngine) *LinkCheck {
	return &LinkCheck{engine: engine}
}

func (check *LinkCheck) Name() string {
	return LINK_CHECK_NAME
}

// Candidate accepts representative edges of link classes only
func (check *LinkCheck) Candidate(edge *Edge) bool {
	return edge.Representative && check.engine.Table().IsLink(edge.Highway)
}

func (check *LinkCheck) Evaluate(id EdgeID) (Way, Verdict) {
	return check.engine.EvaluateWay(id)
}

func (check *LinkCheck) Instruction(verdict Verdict) string {
	return linkInstruction(verdict)
}
