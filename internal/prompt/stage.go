package prompt

// Stage tracks where a content-creation exchange stands.
type Stage string

const (
	StageReceived        Stage = "received"
	StageAskFollowUp     Stage = "ask_followup"
	StageAwaitingDetails Stage = "awaiting_details"
	StageGenerate        Stage = "generate"
	StageDrafted         Stage = "drafted"
	StageSaved           Stage = "saved"
)

var transitions = map[Stage][]Stage{
	StageReceived:        {StageAskFollowUp, StageGenerate},
	StageAskFollowUp:     {StageAwaitingDetails},
	StageAwaitingDetails: {StageGenerate},
	StageGenerate:        {StageDrafted, StageReceived},
	StageDrafted:         {StageSaved, StageGenerate, StageReceived},
	StageSaved:           {StageReceived},
}

// CanTransition reports whether an exchange may move from s to next. The
// empty stage is a fresh conversation and behaves like StageSaved.
func (s Stage) CanTransition(next Stage) bool {
	if s == "" {
		s = StageSaved
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Next returns the stage a turn settles in, given the stage before it,
// whether the reply was a clarifying question and whether it carried a draft.
func Next(cur Stage, followUp, drafted bool) Stage {
	switch cur {
	case StageAwaitingDetails, StageDrafted:
		// Details for the pending request, or changes to the draft.
	default:
		if followUp {
			return StageAwaitingDetails
		}
	}
	if drafted {
		return StageDrafted
	}
	return StageGenerate
}
