package event

type Event interface {
	Type() string
}

const GuardrailChangedEventType = "GuardrailChangedEvent"

// GuardrailChangedEvent announces that a guardrail or one of its rules was mutated.
type GuardrailChangedEvent struct {
	GuardrailID string `json:"guardrail_id"`
	Origin      string `json:"origin"`
}

func (e GuardrailChangedEvent) Type() string {
	return GuardrailChangedEventType
}
