package enums

import "fmt"

// GroupType maps to the group_type enum in Postgres.
type GroupType string

const (
	// GroupTypeQuota pools clients subject to per-category unit limits.
	GroupTypeQuota GroupType = "quota"
	// GroupTypeJustificative pools clients exempt from category quotas.
	GroupTypeJustificative GroupType = "justificative"
)

var validGroupTypes = []GroupType{
	GroupTypeQuota,
	GroupTypeJustificative,
}

// String implements fmt.Stringer.
func (g GroupType) String() string {
	return string(g)
}

// IsValid reports whether the value matches the canonical group_type enum.
func (g GroupType) IsValid() bool {
	for _, candidate := range validGroupTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// Accepts reports whether a group of this type may hold a client of the given
// type. Military clients are split by duty status: passive personnel go to
// quota groups, active personnel to justificative groups.
func (g GroupType) Accepts(clientType ClientType, militaryStatus MilitaryStatus) bool {
	switch g {
	case GroupTypeQuota:
		switch clientType {
		case ClientTypeCivilian, ClientTypeAthlete:
			return true
		case ClientTypeMilitary:
			return militaryStatus == MilitaryStatusPassive
		}
	case GroupTypeJustificative:
		switch clientType {
		case ClientTypeCompany, ClientTypeAthlete:
			return true
		case ClientTypeMilitary:
			return militaryStatus == MilitaryStatusActive
		}
	}
	return false
}

// ParseGroupType converts raw input into GroupType.
func ParseGroupType(value string) (GroupType, error) {
	for _, candidate := range validGroupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group type %q", value)
}

// GroupStage maps to the group_stage enum in Postgres. Stages advance strictly
// forward through the import cycle.
type GroupStage string

const (
	GroupStageCreated  GroupStage = "created"
	GroupStageOrdered  GroupStage = "ordered"
	GroupStageProforma GroupStage = "proforma"
	GroupStageCustoms  GroupStage = "customs"
	GroupStageArrived  GroupStage = "arrived"
	GroupStageClosed   GroupStage = "closed"
)

var validGroupStages = []GroupStage{
	GroupStageCreated,
	GroupStageOrdered,
	GroupStageProforma,
	GroupStageCustoms,
	GroupStageArrived,
	GroupStageClosed,
}

var groupStageTransitions = map[GroupStage][]GroupStage{
	GroupStageCreated:  {GroupStageOrdered},
	GroupStageOrdered:  {GroupStageProforma},
	GroupStageProforma: {GroupStageCustoms},
	GroupStageCustoms:  {GroupStageArrived},
	GroupStageArrived:  {GroupStageClosed},
	GroupStageClosed:   {},
}

// String implements fmt.Stringer.
func (g GroupStage) String() string {
	return string(g)
}

// IsValid reports whether the value matches the canonical group_stage enum.
func (g GroupStage) IsValid() bool {
	for _, candidate := range validGroupStages {
		if candidate == g {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (g GroupStage) CanTransitionTo(next GroupStage) bool {
	for _, allowed := range groupStageTransitions[g] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsNewMembers reports whether clients may still be pooled into a group
// at this stage.
func (g GroupStage) AcceptsNewMembers() bool {
	return g != GroupStageArrived && g != GroupStageClosed
}

// ParseGroupStage converts raw input into GroupStage.
func ParseGroupStage(value string) (GroupStage, error) {
	for _, candidate := range validGroupStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group stage %q", value)
}
