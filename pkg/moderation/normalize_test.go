package moderation_test

import (
	"encoding/json"
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeCheck(t *testing.T, raw string) moderation.CheckResponse {
	t.Helper()
	var resp moderation.CheckResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp
}

func TestNormalizeCheck_Safe(t *testing.T) {
	result := moderation.NormalizeCheck(decodeCheck(t, `{"status":"safe","violations":[],"request_id":"123"}`))

	assert.True(t, result.Valid)
	assert.Equal(t, "safe", result.Status)
	assert.Equal(t, "123", result.RequestID)
	assert.NotNil(t, result.Violations)
	assert.Empty(t, result.Violations)
	assert.Nil(t, result.Message)
	assert.Nil(t, result.Metadata)
	assert.Nil(t, result.RuleDetails)
}

func TestNormalizeCheck_Violation(t *testing.T) {
	raw := `{
		"status":"unsafe",
		"violations":[{"rule_id":"r1","type":"toxicity","matched":"bad","confidence":0.93,"category":"hate"}],
		"request_id":"abc",
		"message":"blocked",
		"metadata":{"processing_time_ms":12.5,"toxicity_scores":{"insult":0.8}},
		"rule_details":{"r1":{"description":"no insults","response":"rephrase"}}
	}`
	result := moderation.NormalizeCheck(decodeCheck(t, raw))

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "r1", v.RuleID)
	assert.Equal(t, "toxicity", v.Type)
	assert.Equal(t, "bad", v.Matched)
	assert.InDelta(t, 0.93, v.Confidence, 1e-9)
	require.NotNil(t, v.Category)
	assert.Equal(t, "hate", *v.Category)
	assert.Nil(t, v.Details)

	require.NotNil(t, result.Message)
	assert.Equal(t, "blocked", *result.Message)
	require.NotNil(t, result.Metadata)
	require.NotNil(t, result.Metadata.ProcessingTimeMs)
	assert.Equal(t, 12.5, *result.Metadata.ProcessingTimeMs)
	assert.Equal(t, map[string]float64{"insult": 0.8}, result.Metadata.ToxicityScores)
	assert.Nil(t, result.Metadata.ClassifierError)
	assert.Equal(t, moderation.RuleDetail{Description: "no insults", Response: "rephrase"}, result.RuleDetails["r1"])
}

func TestNormalizeCheck_MissingViolationsBecomeEmpty(t *testing.T) {
	result := moderation.NormalizeCheck(decodeCheck(t, `{"status":"warning","request_id":"x"}`))
	assert.False(t, result.Valid)
	assert.NotNil(t, result.Violations)
	assert.Empty(t, result.Violations)
}

func TestNormalizeCheck_OmitsAbsentFieldsWhenEncoded(t *testing.T) {
	result := moderation.NormalizeCheck(decodeCheck(t, `{"status":"safe","violations":[],"request_id":"1"}`))
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"violations":[],"requestId":"1","status":"safe"}`, string(raw))
}

func TestNormalizeBatch_PreservesOrder(t *testing.T) {
	var resp moderation.BatchResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"batch_id":"b1",
		"results":[
			{"status":"safe","violations":[],"request_id":"1"},
			{"status":"unsafe","violations":[{"rule_id":"r","type":"t","matched":"m","confidence":1}],"request_id":"2"}
		],
		"total_items":2,
		"processing_time_ms":40
	}`), &resp))

	result := moderation.NormalizeBatch(resp)
	assert.Equal(t, "b1", result.BatchID)
	assert.Equal(t, 2, result.TotalItems)
	assert.Equal(t, float64(40), result.ProcessingTimeMs)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "1", result.Results[0].RequestID)
	assert.True(t, result.Results[0].Valid)
	assert.Equal(t, "2", result.Results[1].RequestID)
	assert.False(t, result.Results[1].Valid)
}
