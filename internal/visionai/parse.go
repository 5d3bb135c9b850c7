package visionai

import (
	"encoding/json"
	"regexp"

	"github.com/kaptinlin/jsonrepair"
)

// InvalidResponseDescription marks a vision reply that could not be
// parsed into rule results.
const InvalidResponseDescription = "Invalid JSON response"

// The model is instructed to answer with a bare JSON array, but replies
// regularly arrive wrapped in prose or markdown fences anyway.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// RuleResult is one parsed entry of a multi-rule vision response.
type RuleResult struct {
	RuleID      string  `json:"ruleId"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// ExtractJSONBlock returns the first JSON array substring found in
// text, or the empty string when there is none.
func ExtractJSONBlock(text string) string {
	return jsonArrayPattern.FindString(text)
}

// ParseResults decodes an extracted JSON array into rule results.
// Near-JSON (trailing commas, single quotes) gets one repair attempt;
// anything still unusable degrades to a single synthetic failure
// result rather than an error.
func ParseResults(jsonText string) []RuleResult {
	if jsonText == "" {
		return invalidResponse()
	}

	items, err := decodeResults(jsonText)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(jsonText)
		if repairErr != nil {
			return invalidResponse()
		}
		items, err = decodeResults(repaired)
		if err != nil {
			return invalidResponse()
		}
	}
	return items
}

type rawResult struct {
	RuleID      string  `json:"ruleId"`
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	Description string  `json:"description"`
}

func decodeResults(jsonText string) ([]RuleResult, error) {
	var raw []rawResult
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, err
	}

	results := make([]RuleResult, 0, len(raw))
	for _, item := range raw {
		id := item.RuleID
		if id == "" {
			id = item.ID
		}
		description := item.Reason
		if description == "" {
			description = item.Description
		}
		results = append(results, RuleResult{
			RuleID:      id,
			Status:      item.Status,
			Confidence:  item.Confidence,
			Description: description,
		})
	}
	return results, nil
}

func invalidResponse() []RuleResult {
	return []RuleResult{{
		RuleID:      "error",
		Status:      "fail",
		Confidence:  0,
		Description: InvalidResponseDescription,
	}}
}
