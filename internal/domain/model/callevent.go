package model

// CallEventKind classifies a call lifecycle webhook event.
type CallEventKind string

const (
	// CallEventRinging is delivered when an inbound or outbound call starts ringing.
	CallEventRinging CallEventKind = "ringing"
	// CallEventCompleted is delivered when a call ends, answered or not.
	CallEventCompleted CallEventKind = "completed"
	// CallEventUnknown covers every event kind the aggregator does not track.
	CallEventUnknown CallEventKind = "unknown"
)

// CallDirection identifies which party initiated a call.
type CallDirection string

const (
	DirectionIncoming CallDirection = "incoming"
	DirectionOutgoing CallDirection = "outgoing"
	DirectionUnknown  CallDirection = "unknown"
)

// CallEvent is one call lifecycle transition, normalized from the webhook
// sender's inconsistent payload shapes. Pointer fields distinguish "absent
// from the payload" from a zero value, which matters for missed-call
// classification.
type CallEvent struct {
	Kind        CallEventKind
	Direction   CallDirection
	CallID      string
	From        string
	Status      string
	Disposition string
	AnsweredAt  *string
	Answered    *bool
	Duration    *float64
}

// Missed reports whether a completed incoming call went unanswered.
// The webhook schema has shipped several shapes over time, so this is a
// disjunction over every signal observed in production: an explicit
// missed/no-answer status or disposition, a null answeredAt, an explicit
// answered=false, or a zero duration.
func (e CallEvent) Missed() bool {
	if isMissedLabel(e.Status) || isMissedLabel(e.Disposition) {
		return true
	}
	if e.AnsweredAt == nil {
		return true
	}
	if e.Answered != nil && !*e.Answered {
		return true
	}
	if e.Duration != nil && *e.Duration == 0 {
		return true
	}
	return false
}

func isMissedLabel(s string) bool {
	switch s {
	case "missed", "no-answer", "no_answer", "noanswer":
		return true
	}
	return false
}
