package guardrail

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RuleStatus is the lifecycle tag of a rule. The zero value is not a valid status.
type RuleStatus uint8

const (
	RuleStatusProposed RuleStatus = iota + 1
	RuleStatusVoting
	RuleStatusApproved
	RuleStatusRejected
)

var ruleStatusNames = map[RuleStatus]string{
	RuleStatusProposed: "Proposed",
	RuleStatusVoting:   "Voting",
	RuleStatusApproved: "Approved",
	RuleStatusRejected: "Rejected",
}

func ParseRuleStatus(tag string) (RuleStatus, error) {
	for status, name := range ruleStatusNames {
		if name == tag {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRuleStatus, tag)
}

func (s RuleStatus) String() string {
	if name, ok := ruleStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RuleStatus(%d)", uint8(s))
}

func (s RuleStatus) Valid() bool {
	_, ok := ruleStatusNames[s]
	return ok
}

// IsTerminal reports whether no transition leaves this status.
func (s RuleStatus) IsTerminal() bool {
	return s == RuleStatusApproved || s == RuleStatusRejected
}

// MarshalJSON encodes the status as a single-tag record, e.g. {"Proposed":null}.
func (s RuleStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRuleStatus, uint8(s))
	}
	return json.Marshal(map[string]any{s.String(): nil})
}

// UnmarshalJSON accepts the single-tag record form and, for convenience, a bare tag string.
func (s *RuleStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		parsed, err := ParseRuleStatus(tag)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownRuleStatus, string(data))
	}
	if len(record) != 1 {
		return fmt.Errorf("%w: expected exactly one tag, got %d", ErrUnknownRuleStatus, len(record))
	}
	for tag := range record {
		parsed, err := ParseRuleStatus(tag)
		if err != nil {
			return err
		}
		*s = parsed
	}
	return nil
}

func (s RuleStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRuleStatus, uint8(s))
	}
	return s.String(), nil
}

func (s *RuleStatus) Scan(value interface{}) error {
	var tag string
	switch v := value.(type) {
	case string:
		tag = v
	case []byte:
		tag = string(v)
	default:
		return fmt.Errorf("%w: unexpected column type %T", ErrUnknownRuleStatus, value)
	}
	parsed, err := ParseRuleStatus(tag)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
