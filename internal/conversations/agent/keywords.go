package agent

import "strings"

// KeywordDetector flags messages that must reach a human regardless of what
// the model decides: explicit agent requests, complaints, payment problems.
// The keyword list is business-tunable configuration, not a constant.
type KeywordDetector struct {
	keywords []string
}

// NewKeywordDetector builds a detector from the configured keyword list.
func NewKeywordDetector(keywords []string) *KeywordDetector {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return &KeywordDetector{keywords: normalized}
}

// Match reports whether the message contains any escalation keyword, and
// which one triggered.
func (d *KeywordDetector) Match(message string) (string, bool) {
	lowered := strings.ToLower(message)
	for _, k := range d.keywords {
		if strings.Contains(lowered, k) {
			return k, true
		}
	}
	return "", false
}
