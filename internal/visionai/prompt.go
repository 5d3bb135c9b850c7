package visionai

import (
	"fmt"
	"sort"
	"strings"
)

// BuildMultiPrompt assembles the combined user prompt for a multi-rule
// evaluation. Rule blocks are emitted in sorted id order so the request
// body is deterministic for a given prompt set.
func BuildMultiPrompt(prompts map[string]string) string {
	var b strings.Builder
	b.WriteString(
		"You are given an image of a dealership vehicle. " +
			"Based on the image, evaluate each rule below and respond with ONLY a JSON array using this format:\n\n" +
			"[\n" +
			"  {\n" +
			"    \"ruleId\": \"vehicle_dressed\",\n" +
			"    \"status\": \"pass|fail|unknown\",\n" +
			"    \"confidence\": 0-100,\n" +
			"    \"reason\": \"Brief explanation with visual justification\"\n" +
			"  },\n" +
			"  ...\n" +
			"]\n\n")

	ids := make([]string, 0, len(prompts))
	for id := range prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(&b, "\nEvaluate ruleId: %q\nInstruction: %s\n", id, prompts[id])
	}
	return b.String()
}
