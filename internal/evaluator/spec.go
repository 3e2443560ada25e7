package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/dataqa/internal/llm"
	"github.com/jonathan/dataqa/internal/types"
)

// LLMSpec is an LLM evaluator entry in the "llm_type" registry
type LLMSpec struct {
	Key           string
	DefaultPrompt string
	Parse         ResponseParser
}

// TypeKey returns the registry key
func (s LLMSpec) TypeKey() string {
	return s.Key
}

// LLMBuiltins returns the builtin LLM evaluator specs
func LLMBuiltins() []LLMSpec {
	return []LLMSpec{
		{Key: "text_quality", DefaultPrompt: "text_quality", Parse: ParseQuality},
		{Key: "text_quality_detail", DefaultPrompt: "repeat", Parse: ParseQualityDetail},
	}
}

// qualityResponse is the JSON shape quality prompts ask for
type qualityResponse struct {
	Score  *float64        `json:"score"`
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Reason json.RawMessage `json:"reason"`
}

// ParseQuality reads {"score", "reason"}. A score of 1 passes.
func ParseQuality(raw string) (types.Result, error) {
	resp, err := decodeQuality(raw)
	if err != nil {
		return types.Result{}, err
	}

	reason, err := decodeReason(resp.Reason)
	if err != nil {
		return types.Result{}, err
	}

	result := types.Result{
		Outcome: types.OutcomePass,
		Score:   resp.Score,
		Reason:  reason,
	}
	if *resp.Score != 1 {
		result.Outcome = types.OutcomeFail
	}
	return result, nil
}

// ParseQualityDetail is ParseQuality plus the quality type and name, which a
// failing response must carry.
func ParseQualityDetail(raw string) (types.Result, error) {
	result, err := ParseQuality(raw)
	if err != nil {
		return types.Result{}, err
	}

	resp, _ := decodeQuality(raw)
	if result.Failed() && (resp.Type == "" || resp.Name == "") {
		return types.Result{}, errors.New("failing response has no type or name")
	}
	if result.Failed() {
		result.Type = resp.Type
		result.Name = resp.Name
	}
	return result, nil
}

func decodeQuality(raw string) (qualityResponse, error) {
	var resp qualityResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		return resp, fmt.Errorf("invalid JSON: %w", err)
	}
	if resp.Score == nil {
		return resp, errors.New("response has no score")
	}
	return resp, nil
}

// decodeReason accepts a string or a list of strings
func decodeReason(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("reason must be a string or a list of strings: %w", err)
	}
	if strings.TrimSpace(single) == "" {
		return nil, nil
	}
	return []string{single}, nil
}
