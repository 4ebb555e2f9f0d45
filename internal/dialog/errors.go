package dialog

// Kind labels why a turn stopped before answering. It is empty on a turn
// that completed its request. Session surfaces and tests branch on it; the
// reply text is what the user actually sees.
type Kind string

const (
	// KindAmbiguousIndicator: resolution produced a candidate list and
	// the turn is waiting for the user to choose.
	KindAmbiguousIndicator Kind = "ambiguous_indicator"
	// KindMissingSlot: the indicator or the time slot is still empty and
	// the turn asked a targeted follow-up.
	KindMissingSlot Kind = "missing_slot"
	// KindUpstreamFailure: the platform query failed after retries. The
	// entry keeps its filled slots so the user can just retry.
	KindUpstreamFailure Kind = "upstream_query_failure"
	// KindMalformedTurn: the classifier output could not be used and the
	// turn was handled as a bare clarification from history alone.
	KindMalformedTurn Kind = "malformed_classifier_output"
)
