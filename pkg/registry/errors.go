package registry

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
)

var (
	ErrUnauthorized    = errors.New("registry rejected the credentials")
	ErrUnexpectedReply = errors.New("unexpected registry reply")
)

// knownReasons are the domain errors a registry Err reason can start with.
var knownReasons = []error{
	guardrail.ErrNameRequired,
	guardrail.ErrOwnerRequired,
	guardrail.ErrRuleTextRequired,
	guardrail.ErrNoRules,
	guardrail.ErrDuplicateID,
	guardrail.ErrUnknownRuleStatus,
	guardrail.ErrInvalidTransition,
	guardrail.ErrAlreadyVoted,
	guardrail.ErrInvalidVoteDirection,
	guardrail.ErrVoteLimitReached,
}

// reasonError turns an Err reason into the matching domain error so callers
// can use errors.Is and domain.IsNotFoundError on client results.
func reasonError(status int, reason, entity, id string) error {
	if status == http.StatusNotFound || strings.HasSuffix(reason, "not found") {
		if strings.HasPrefix(reason, "rule") {
			entity = "rule"
		} else if strings.HasPrefix(reason, "guardrail") {
			entity = "guardrail"
		}
		return domain.NewNotFoundError(entity, id)
	}
	for _, known := range knownReasons {
		if reason == known.Error() {
			return known
		}
		if strings.HasPrefix(reason, known.Error()+":") {
			return fmt.Errorf("%w%s", known, strings.TrimPrefix(reason, known.Error()))
		}
	}
	if status == http.StatusConflict {
		return fmt.Errorf("%w: %s", guardrail.ErrDuplicateID, reason)
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedReply, status, reason)
}
