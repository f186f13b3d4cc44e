package safety

import (
	"regexp"
	"strings"
)

// Validation issue labels. These travel over the wire, so renaming one is a
// breaking change for orchestrator consumers.
const (
	IssueInputTooLong     = "input_too_long"
	IssueSQLInjection     = "sql_injection_pattern"
	IssueXSS              = "xss_pattern"
	IssueCommandInjection = "command_injection_pattern"
	IssueSpecialCharRatio = "excessive_special_characters"
	IssueOutputTooLong    = "output_too_long"
	IssueOutputTooShort   = "output_too_short"
	IssueContradiction    = "contradictory_response"
)

// InputVerdict is the outcome of input validation. FilteredText is populated
// only for unsafe input, as a sanitized suggestion.
type InputVerdict struct {
	IsSafe       bool
	Issues       []string
	FilteredText string
}

// OutputVerdict is the outcome of output validation.
type OutputVerdict struct {
	IsSafe     bool
	Confidence float64
	Issues     []string
}

var (
	sqlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)('\s*OR\s*'1'\s*=\s*'1)`),
		regexp.MustCompile(`(?i)(;\s*DROP\s+TABLE)`),
		regexp.MustCompile(`(?i)(UNION\s+SELECT)`),
	}
	xssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)onerror\s*=`),
		regexp.MustCompile(`(?i)onclick\s*=`),
	}
	cmdPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[;&|]\s*(rm|cat|ls|wget|curl)\b`),
		regexp.MustCompile("`[^`]*`"),
		regexp.MustCompile(`\$\([^)]*\)`),
	}

	filterAllowed = regexp.MustCompile(`[^a-zA-Z0-9\s.,!?]`)
)

// Validator applies rule-based safety checks to user input and generated
// output. It holds no state and is safe for concurrent use.
type Validator struct {
	maxInputLen  int
	maxOutputLen int
}

// NewValidator creates a validator with the given length bounds.
func NewValidator(maxInputLen, maxOutputLen int) *Validator {
	return &Validator{maxInputLen: maxInputLen, maxOutputLen: maxOutputLen}
}

// ValidateInput checks user text before it enters the pipeline. The checks
// are heuristics against obvious injection attempts, not a full sanitizer.
func (v *Validator) ValidateInput(text string) InputVerdict {
	var issues []string

	if len(text) > v.maxInputLen {
		issues = append(issues, IssueInputTooLong)
	}
	if matchesAny(text, sqlPatterns) {
		issues = append(issues, IssueSQLInjection)
	}
	if matchesAny(text, xssPatterns) {
		issues = append(issues, IssueXSS)
	}
	if matchesAny(text, cmdPatterns) {
		issues = append(issues, IssueCommandInjection)
	}
	if specialCharRatio(text) > 0.5 {
		issues = append(issues, IssueSpecialCharRatio)
	}

	verdict := InputVerdict{IsSafe: len(issues) == 0, Issues: issues}
	if !verdict.IsSafe {
		verdict.FilteredText = filterAllowed.ReplaceAllString(text, "")
	}
	return verdict
}

// ValidateOutput checks generated text before it is returned to the user.
// Confidence degrades by 0.2 per issue, floored at zero.
func (v *Validator) ValidateOutput(text string) OutputVerdict {
	var issues []string

	if len(text) > v.maxOutputLen {
		issues = append(issues, IssueOutputTooLong)
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 {
		issues = append(issues, IssueOutputTooShort)
	}
	if hasContradiction(trimmed) {
		issues = append(issues, IssueContradiction)
	}

	confidence := 1.0 - 0.2*float64(len(issues))
	if confidence < 0 {
		confidence = 0
	}

	return OutputVerdict{
		IsSafe:     len(issues) == 0,
		Confidence: confidence,
		Issues:     issues,
	}
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// specialCharRatio returns the share of characters outside the plain-text
// allowlist. Empty text scores zero.
func specialCharRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	special := 0
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		case r == '.' || r == ',' || r == '!' || r == '?':
		default:
			special++
		}
	}
	return float64(special) / float64(len([]rune(text)))
}

// hasContradiction flags short answers that assert both yes and no. Only
// applied under 50 words; longer text legitimately weighs both sides.
func hasContradiction(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) >= 50 {
		return false
	}
	var hasYes, hasNo bool
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		if w == "yes" {
			hasYes = true
		}
		if w == "no" {
			hasNo = true
		}
	}
	return hasYes && hasNo
}
