package voice

import (
	"regexp"
	"strings"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
)

// LeadInfo is best-effort enrichment pulled from free speech. Fields are
// low confidence and may be empty; nothing downstream should treat them
// as validated data.
type LeadInfo struct {
	Name          string
	Company       string
	Email         string
	InterestLevel models.InterestLevel
}

// Empty reports whether nothing at all was extracted
func (li LeadInfo) Empty() bool {
	return li.Name == "" && li.Company == "" && li.Email == "" && li.InterestLevel == ""
}

var (
	namePattern    = regexp.MustCompile(`(?i)\b(?:my name is|i'm|i am|this is|call me)\s+([A-Za-z]+(?:\s[A-Za-z]+)?)`)
	companyPattern = regexp.MustCompile(`(?i)\b(?:from|with|at|of)\s+([A-Za-z0-9][A-Za-z0-9 &'-]{1,40}?(?:\s(?:inc|llc|corp|company|co)\.?))\b`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

var highInterestKeywords = []string{"pricing", "how much", "cost", "sign up", "get started"}
var mediumInterestKeywords = []string{"interested", "tell me more", "demo", "learn more"}

// stop words that the name pattern tends to catch after "I'm"
var nameStopWords = map[string]bool{
	"calling": true, "interested": true, "looking": true, "trying": true,
	"not": true, "just": true, "sorry": true, "good": true, "here": true,
}

// connectives the name pattern drags in when the caller keeps talking,
// as in "I'm Priya from Brightside Dental"
var connectiveWords = map[string]bool{
	"from": true, "with": true, "at": true, "and": true, "of": true,
}

// ExtractLeadInfo scans one caller utterance for contact details and
// buying signals
func ExtractLeadInfo(utterance string) LeadInfo {
	var info LeadInfo

	if m := namePattern.FindStringSubmatch(utterance); m != nil {
		words := strings.Fields(strings.TrimSpace(m[1]))
		if len(words) == 2 && connectiveWords[strings.ToLower(words[1])] {
			words = words[:1]
		}
		if len(words) > 0 && !nameStopWords[strings.ToLower(words[0])] {
			info.Name = strings.Join(words, " ")
		}
	}

	if m := companyPattern.FindStringSubmatch(utterance); m != nil {
		info.Company = strings.TrimSpace(m[1])
	}

	if m := emailPattern.FindString(utterance); m != "" {
		info.Email = strings.ToLower(m)
	}

	lowered := strings.ToLower(utterance)
	for _, kw := range highInterestKeywords {
		if strings.Contains(lowered, kw) {
			info.InterestLevel = models.InterestHigh
			break
		}
	}
	if info.InterestLevel == "" {
		for _, kw := range mediumInterestKeywords {
			if strings.Contains(lowered, kw) {
				info.InterestLevel = models.InterestMedium
				break
			}
		}
	}

	return info
}
