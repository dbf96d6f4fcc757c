package analyses

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	errMissingField = errors.New("missing")
	errNotInteger   = errors.New("must be an integer number")
	errNotList      = errors.New("must be an array of strings")
)

// ParseRecord validates raw model output and returns the AnalysisRecord it encodes.
// All six fields must be present and correctly typed; anything else is rejected whole.
func ParseRecord(raw string) (AnalysisRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return AnalysisRecord{}, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("decode json: %w", err)}
	}
	if fields == nil {
		return AnalysisRecord{}, &MalformedResponseError{Raw: raw, Err: errors.New("not a json object")}
	}

	var rec AnalysisRecord
	var err error
	fail := func(field string, cause error) (AnalysisRecord, error) {
		return AnalysisRecord{}, &MalformedResponseError{Raw: raw, Field: field, Err: cause}
	}

	if rec.SkillMatchPercentage, err = intField(fields, "skill_match_percentage"); err != nil {
		return fail("skill_match_percentage", err)
	}
	if rec.MatchedSkills, err = listField(fields, "matched_skills"); err != nil {
		return fail("matched_skills", err)
	}
	if rec.MissingSkills, err = listField(fields, "missing_skills"); err != nil {
		return fail("missing_skills", err)
	}
	if rec.ResumeIssues, err = listField(fields, "resume_issues"); err != nil {
		return fail("resume_issues", err)
	}
	if rec.ImprovementSuggestions, err = listField(fields, "improvement_suggestions"); err != nil {
		return fail("improvement_suggestions", err)
	}
	if rec.SimulatedScoreAfterImprovements, err = intField(fields, "simulated_score_after_improvements"); err != nil {
		return fail("simulated_score_after_improvements", err)
	}
	return rec, nil
}

func intField(fields map[string]json.RawMessage, name string) (int, error) {
	val, ok := fields[name]
	if !ok {
		return 0, errMissingField
	}
	val = bytes.TrimSpace(val)
	// Only bare JSON numbers; strings, null and booleans are rejected.
	if len(val) == 0 || !(val[0] == '-' || (val[0] >= '0' && val[0] <= '9')) {
		return 0, errNotInteger
	}
	var n float64
	if err := json.Unmarshal(val, &n); err != nil {
		return 0, errNotInteger
	}
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, errNotInteger
	}
	return int(n), nil
}

func listField(fields map[string]json.RawMessage, name string) ([]string, error) {
	val, ok := fields[name]
	if !ok {
		return nil, errMissingField
	}
	val = bytes.TrimSpace(val)
	if len(val) == 0 || val[0] != '[' {
		return nil, errNotList
	}
	var items []json.RawMessage
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, errNotList
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if len(item) == 0 || item[0] != '"' {
			return nil, errNotList
		}
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, errNotList
		}
		out = append(out, s)
	}
	return out, nil
}
