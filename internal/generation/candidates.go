package generation

import "strings"

// Supported provider identifiers
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Candidate names one selectable backend model. The provider's catalog of
// available identifiers is not reliably knowable ahead of time, so callers
// hold an ordered list of candidates and try them in turn.
type Candidate struct {
	Provider string
	Model    string
}

func (c Candidate) String() string {
	return c.Provider + ":" + c.Model
}

// ParseCandidates converts configured "provider:model" strings into
// candidates, preserving order. A bare model name implies gemini.
// Malformed entries are dropped.
func ParseCandidates(entries []string) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		provider := ProviderGemini
		model := entry
		if i := strings.IndexByte(entry, ':'); i >= 0 {
			provider = strings.ToLower(strings.TrimSpace(entry[:i]))
			model = strings.TrimSpace(entry[i+1:])
		}
		if model == "" {
			continue
		}

		candidates = append(candidates, Candidate{Provider: provider, Model: model})
	}
	return candidates
}

// isModelNotFound classifies a provider error as "the identifier does not
// resolve" as opposed to any other failure. Provider errors are opaque
// strings; this is a coarse match used only for logging and fallback
// bookkeeping, never for flow control beyond trying the next candidate.
func isModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"not found", "not_found", "404", "does not exist", "unknown model"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
