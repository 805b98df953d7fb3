package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoJSONObject is returned when a reply contains no JSON object at all.
var ErrNoJSONObject = errors.New("model response contains no JSON object")

// Number decodes a JSON number, a numeric string, or null. Anything else
// decodes as 0 so one odd field does not discard a whole assessment.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(f)
			return nil
		}
	}
	*n = 0
	return nil
}

// CommitScore is the model's grade for one pull request.
type CommitScore struct {
	SHA       string `json:"sha"`
	Grade     Number `json:"grade"`
	Reasoning string `json:"reasoning"`
}

func (c *CommitScore) UnmarshalJSON(data []byte) error {
	var aux struct {
		SHA       string `json:"sha"`
		ShortSHA  string `json:"shortSha"`
		Grade     Number `json:"grade"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.SHA = aux.SHA
	if c.SHA == "" {
		c.SHA = aux.ShortSHA
	}
	c.Grade = aux.Grade
	c.Reasoning = aux.Reasoning
	return nil
}

// Score is the parsed reply for one developer. Numbers are raw model output;
// clamping and rounding happen during assembly.
type Score struct {
	ImpactGPA       Number        `json:"impactGPA"`
	Archetype       string        `json:"archetype"`
	Assessment      string        `json:"assessment"`
	ConfidenceScore Number        `json:"confidenceScore"`
	ComplexityScore Number        `json:"complexityScore"`
	DeletionValue   Number        `json:"deletionValue"`
	Commits         []CommitScore `json:"commits"`
}

// ParseScore extracts the JSON object from a model reply and decodes it.
// Markdown fences and prose around the object are tolerated.
func ParseScore(text string) (*Score, error) {
	body := extractObject(text)
	if body == "" {
		return nil, ErrNoJSONObject
	}

	var s Score
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("parse model response as JSON: %w", err)
	}
	return &s, nil
}

func extractObject(text string) string {
	text = stripFences(strings.TrimSpace(text))
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// stripFences removes a surrounding ```json ... ``` block.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) > 1 {
		text = lines[1]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
