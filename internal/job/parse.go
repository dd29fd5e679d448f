package job

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	MarkerFound   = "---JOB_FOUND---"
	MarkerApplied = "---JOB_APPLIED---"
	MarkerEnd     = "---END---"
)

// Fields is the flat key/value view of one result block.
type Fields map[string]any

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
	kindList
)

type fieldSpec struct {
	prefix string
	key    string
	kind   fieldKind
}

// Order matters only for readability; prefixes do not shadow each other.
var knownFields = []fieldSpec{
	{prefix: "Portal:", key: "portal", kind: kindString},
	{prefix: "Company:", key: "company", kind: kindString},
	{prefix: "Title:", key: "title", kind: kindString},
	{prefix: "URL:", key: "url", kind: kindString},
	{prefix: "Score:", key: "score", kind: kindInt},
	{prefix: "Status:", key: "status", kind: kindString},
	{prefix: "CoverLetterUsed:", key: "cover_letter_used", kind: kindBool},
	{prefix: "ResumeUploaded:", key: "resume_uploaded", kind: kindBool},
	{prefix: "TechStack:", key: "tech_stack", kind: kindList},
	{prefix: "SalaryRange:", key: "salary_range", kind: kindString},
	{prefix: "Remote:", key: "remote", kind: kindString},
	{prefix: "Experience:", key: "experience", kind: kindString},
	{prefix: "Notes:", key: "notes", kind: kindString},
}

// ParseFields scans Key: value lines and returns the recognized ones.
// It never fails: LLM output has no guaranteed grammar, so bad values
// degrade to zero values and unknown lines are skipped.
func ParseFields(text string) Fields {
	fields := Fields{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, spec := range knownFields {
			if !strings.HasPrefix(line, spec.prefix) {
				continue
			}
			value := strings.TrimSpace(strings.TrimPrefix(line, spec.prefix))
			fields[spec.key] = convert(spec.kind, value)
			break
		}
	}

	return fields
}

// ParseBlocks splits a reply into the blocks between startMarker and MarkerEnd.
// A block without a recognized field is dropped.
func ParseBlocks(text, startMarker string) []Fields {
	var (
		blocks  []Fields
		current Fields
	)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, startMarker):
			current = Fields{}
		case strings.HasPrefix(trimmed, MarkerEnd):
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = nil
		default:
			if current == nil {
				continue
			}
			for k, v := range ParseFields(trimmed) {
				current[k] = v
			}
		}
	}

	return blocks
}

// Decode maps parsed fields onto a Record. The record is never nil: fields
// that fail to decode keep their zero value and are reported in the error.
func Decode(fields Fields) (*Record, error) {
	rec := &Record{}
	if len(fields) == 0 {
		return rec, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           rec,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return rec, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(map[string]any(fields)); err != nil {
		return rec, fmt.Errorf("decode job fields: %w", err)
	}

	return rec, nil
}

func convert(kind fieldKind, value string) any {
	switch kind {
	case kindInt:
		return parseScore(value)
	case kindBool:
		return normalize(value) == "true"
	case kindList:
		return splitList(value)
	default:
		return value
	}
}

// parseScore accepts "42", "42/100" and falls back to 0.
func parseScore(value string) int {
	head, _, _ := strings.Cut(value, "/")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0
	}
	return n
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		items = append(items, p)
	}
	return items
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
