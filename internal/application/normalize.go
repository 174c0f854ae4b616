package application

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// parseCallEvent normalizes one webhook delivery into a model.CallEvent.
//
// The sender's schema has been inconsistent across event kinds and API
// revisions, so every lookup walks a fallback chain: the event kind lives in
// "type" or "event"; the call object lives under "data", under "object", or
// at the payload root, sometimes wrapped one level deeper in an "object"
// envelope. Do not simplify this to a single assumed shape.
func parseCallEvent(raw []byte) (model.CallEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.CallEvent{}, fmt.Errorf("decode webhook body: %w", err)
	}

	kind := stringField(payload, "type")
	if kind == "" {
		kind = stringField(payload, "event")
	}

	obj := callObject(payload)

	ev := model.CallEvent{
		Kind:        normalizeKind(kind),
		Direction:   normalizeDirection(stringField(obj, "direction")),
		CallID:      firstStringField(obj, "id", "callId"),
		From:        firstStringField(obj, "from", "phoneNumber"),
		Status:      strings.ToLower(stringField(obj, "status")),
		Disposition: strings.ToLower(stringField(obj, "disposition")),
	}

	if v, ok := obj["answeredAt"].(string); ok {
		ev.AnsweredAt = &v
	}
	if v, ok := obj["answered"].(bool); ok {
		ev.Answered = &v
	}
	if v, ok := obj["duration"].(float64); ok {
		ev.Duration = &v
	}

	return ev, nil
}

// callObject locates the call data within the payload.
func callObject(payload map[string]any) map[string]any {
	obj := payload
	for _, key := range []string{"data", "object"} {
		if m, ok := payload[key].(map[string]any); ok {
			obj = m
			break
		}
	}
	// Newer deliveries wrap the call one level deeper.
	if m, ok := obj["object"].(map[string]any); ok {
		obj = m
	}
	return obj
}

func normalizeKind(kind string) model.CallEventKind {
	switch strings.TrimPrefix(strings.ToLower(kind), "call.") {
	case "ringing":
		return model.CallEventRinging
	case "completed", "ended":
		return model.CallEventCompleted
	default:
		return model.CallEventUnknown
	}
}

func normalizeDirection(direction string) model.CallDirection {
	switch strings.ToLower(direction) {
	case "incoming", "inbound":
		return model.DirectionIncoming
	case "outgoing", "outbound":
		return model.DirectionOutgoing
	default:
		return model.DirectionUnknown
	}
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func firstStringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(m, key); v != "" {
			return v
		}
	}
	return ""
}
