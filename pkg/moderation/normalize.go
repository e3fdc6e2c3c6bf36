package moderation

const statusSafe = "safe"

// NormalizeCheck maps a wire check response onto a CheckResult. Optional wire
// fields that are absent stay nil.
func NormalizeCheck(resp CheckResponse) CheckResult {
	violations := make([]Violation, 0, len(resp.Violations))
	for _, v := range resp.Violations {
		violations = append(violations, Violation{
			RuleID:     v.RuleID,
			Type:       v.Type,
			Matched:    v.Matched,
			Confidence: v.Confidence,
			Details:    v.Details,
			Category:   v.Category,
		})
	}

	result := CheckResult{
		Valid:       resp.Status == statusSafe,
		Violations:  violations,
		RequestID:   resp.RequestID,
		Status:      resp.Status,
		Message:     resp.Message,
		RuleDetails: resp.RuleDetails,
	}
	if resp.Metadata != nil {
		result.Metadata = &Metadata{
			ProcessingTimeMs: resp.Metadata.ProcessingTimeMs,
			ToxicityScores:   resp.Metadata.ToxicityScores,
			ClassifierError:  resp.Metadata.ClassifierError,
		}
	}
	return result
}

func NormalizeBatch(resp BatchResponse) BatchResult {
	results := make([]CheckResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, NormalizeCheck(r))
	}
	return BatchResult{
		BatchID:          resp.BatchID,
		Results:          results,
		TotalItems:       resp.TotalItems,
		ProcessingTimeMs: resp.ProcessingTimeMs,
	}
}
