// Package cvr parses newline-delimited cast-vote-record JSON into validated
// records. Validation is permissive: a structurally invalid line
// never aborts the batch; every problem found on a line is collected and
// yielded alongside the record so callers decide whether to reject, log or
// partially accept.
package cvr

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/votary/canvass/core"
	"github.com/votary/canvass/schema"
)

// ParsedCVR is the result of parsing one non-empty CVR line: the decoded
// record, every validation error found on it, and the 1-indexed line number
// counted over all lines including skipped blanks.
type ParsedCVR struct {
	CVR        schema.CastVoteRecord
	Errors     []string
	LineNumber int
}

// Parse lazily yields one ParsedCVR per non-empty line of the input. The
// sequence is finite and single-pass; re-invoking Parse with the same input
// restarts it. Laziness bounds memory on very large CVR files.
func Parse(input string, ed *schema.ElectionDefinition) iter.Seq[ParsedCVR] {
	validator := newLineValidator(ed)
	return func(yield func(ParsedCVR) bool) {
		lineNumber := 0
		for line := range strings.Lines(input) {
			lineNumber++
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if !yield(validator.parseLine(trimmed, lineNumber)) {
				return
			}
		}
	}
}

// ValidRecords consumes Parse eagerly and splits the results into records
// that passed validation and the parsed lines that did not.
func ValidRecords(input string, ed *schema.ElectionDefinition) ([]schema.CastVoteRecord, []ParsedCVR) {
	var valid []schema.CastVoteRecord
	var rejected []ParsedCVR
	for parsed := range Parse(input, ed) {
		if len(parsed.Errors) == 0 {
			valid = append(valid, parsed.CVR)
		} else {
			rejected = append(rejected, parsed)
		}
	}
	return valid, rejected
}

// lineValidator caches per-ballot-style contest sets across lines.
type lineValidator struct {
	election      *schema.Election
	styleContests map[string]map[string]struct{}
}

func newLineValidator(ed *schema.ElectionDefinition) *lineValidator {
	return &lineValidator{
		election:      &ed.Election,
		styleContests: make(map[string]map[string]struct{}),
	}
}

// contestSetForStyle returns the set of expanded contest ids valid for a
// known ballot style.
func (v *lineValidator) contestSetForStyle(style *schema.BallotStyle) map[string]struct{} {
	if set, ok := v.styleContests[style.ID]; ok {
		return set
	}
	set := make(map[string]struct{})
	for _, contest := range core.ContestsForBallotStyle(v.election, style) {
		set[contest.ID] = struct{}{}
	}
	v.styleContests[style.ID] = set
	return set
}

// parseLine decodes and validates a single CVR line, collecting every error
// rather than short-circuiting on the first.
func (v *lineValidator) parseLine(line string, lineNumber int) ParsedCVR {
	parsed := ParsedCVR{LineNumber: lineNumber}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		parsed.Errors = append(parsed.Errors, fmt.Sprintf("invalid JSON: %v", err))
		return parsed
	}

	errs := &parsed.Errors
	record := &parsed.CVR

	// Ballot style must reference a known style; the contest check below
	// depends on it.
	var style *schema.BallotStyle
	if id, ok := requireString(raw, schema.CVRBallotStyleField, errs); ok {
		record.BallotStyleID = id
		style = v.election.BallotStyleByID(id)
		if style == nil {
			*errs = append(*errs, fmt.Sprintf("ballot style %q is not in the election definition", id))
		}
	}

	if id, ok := requireString(raw, schema.CVRPrecinctField, errs); ok {
		record.PrecinctID = id
		if v.election.PrecinctByID(id) == nil {
			*errs = append(*errs, fmt.Sprintf("precinct %q is not in the election definition", id))
		}
	}

	if id, ok := requireString(raw, schema.CVRBallotIDField, errs); ok {
		record.BallotID = id
	}
	if id, ok := requireString(raw, schema.CVRScannerField, errs); ok {
		record.ScannerID = id
	}

	if value, present := raw[schema.CVRTestBallotField]; !present {
		*errs = append(*errs, fmt.Sprintf("%s must be a boolean, got undefined", schema.CVRTestBallotField))
	} else if flag, ok := value.(bool); ok {
		record.TestBallot = flag
	} else {
		*errs = append(*errs, fmt.Sprintf("%s must be a boolean, got %s", schema.CVRTestBallotField, jsonTypeName(value)))
	}

	if value, present := raw[schema.CVRBatchIDField]; present {
		if id, ok := value.(string); ok {
			record.BatchID = id
		} else {
			*errs = append(*errs, fmt.Sprintf("%s must be a string, got %s", schema.CVRBatchIDField, jsonTypeName(value)))
		}
	}
	if value, present := raw[schema.CVRBallotTypeField]; present {
		if ballotType, ok := value.(string); ok {
			record.BallotType = ballotType
		}
	}

	v.parsePageNumbers(raw, record, errs)
	parseLocales(raw, record, errs)

	record.Votes = make(schema.VotesDict)
	for key, value := range raw {
		if strings.HasPrefix(key, schema.VoteMetadataPrefix) {
			// Unknown metadata fields are ignored for forward compatibility.
			continue
		}
		selections, ok := voteSelections(value)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("vote for contest %q must be an array of option ids, got %s", key, jsonTypeName(value)))
			continue
		}
		if style != nil {
			if _, valid := v.contestSetForStyle(style)[key]; !valid {
				*errs = append(*errs, fmt.Sprintf("contest %q is not valid for ballot style %q", key, style.ID))
			}
		}
		record.Votes[key] = selections
	}

	return parsed
}

// parsePageNumbers validates that at most one of the two page-number
// representations is present and well typed.
func (v *lineValidator) parsePageNumbers(raw map[string]any, record *schema.CastVoteRecord, errs *[]string) {
	single, hasSingle := raw[schema.CVRPageNumberField]
	multi, hasMulti := raw[schema.CVRPageNumbersField]

	if hasSingle && hasMulti {
		*errs = append(*errs, fmt.Sprintf("only one of %s and %s may be present", schema.CVRPageNumberField, schema.CVRPageNumbersField))
		return
	}
	if hasSingle {
		if number, ok := single.(float64); ok {
			page := int(number)
			record.PageNumber = &page
		} else {
			*errs = append(*errs, fmt.Sprintf("%s must be a number, got %s", schema.CVRPageNumberField, jsonTypeName(single)))
		}
	}
	if hasMulti {
		numbers, ok := multi.([]any)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("%s must be an array of numbers, got %s", schema.CVRPageNumbersField, jsonTypeName(multi)))
			return
		}
		pages := make([]int, 0, len(numbers))
		for _, entry := range numbers {
			number, ok := entry.(float64)
			if !ok {
				*errs = append(*errs, fmt.Sprintf("%s must be an array of numbers, got element of type %s", schema.CVRPageNumbersField, jsonTypeName(entry)))
				return
			}
			pages = append(pages, int(number))
		}
		record.PageNumbers = pages
	}
}

// parseLocales validates the optional locale descriptor.
func parseLocales(raw map[string]any, record *schema.CastVoteRecord, errs *[]string) {
	value, present := raw[schema.CVRLocalesField]
	if !present {
		return
	}
	object, ok := value.(map[string]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s must be an object, got %s", schema.CVRLocalesField, jsonTypeName(value)))
		return
	}
	primary, ok := object["primary"].(string)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s.primary must be a string, got %s", schema.CVRLocalesField, jsonTypeName(object["primary"])))
		return
	}
	locale := &schema.BallotLocale{Primary: primary}
	if secondary, present := object["secondary"]; present {
		text, ok := secondary.(string)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("%s.secondary must be a string, got %s", schema.CVRLocalesField, jsonTypeName(secondary)))
			return
		}
		locale.Secondary = text
	}
	record.Locales = locale
}

// requireString extracts a required string metadata field, recording a
// type-mismatch error when it is missing or not a string.
func requireString(raw map[string]any, field string, errs *[]string) (string, bool) {
	value, present := raw[field]
	if !present {
		*errs = append(*errs, fmt.Sprintf("%s must be a string, got undefined", field))
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s must be a string, got %s", field, jsonTypeName(value)))
		return "", false
	}
	return text, true
}

// voteSelections coerces a decoded vote value into option ids.
func voteSelections(value any) ([]string, bool) {
	entries, ok := value.([]any)
	if !ok {
		return nil, false
	}
	selections := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch option := entry.(type) {
		case string:
			selections = append(selections, option)
		case map[string]any:
			// Candidate objects carry their id; historical CVR exports mix
			// both representations.
			if id, ok := option["id"].(string); ok {
				selections = append(selections, id)
			}
		default:
			return nil, false
		}
	}
	return selections, true
}

// jsonTypeName names the runtime type of a decoded JSON value the way
// validation messages report it.
func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
