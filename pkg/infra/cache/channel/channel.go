package channel

type Channel string

const GuardrailEvents Channel = "guardrail_events"
