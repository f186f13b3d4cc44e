package domain

// Intent labels form a fixed closed set for zero-shot classification.
// No training happens anywhere in this system; classification is pure
// inference against a pretrained hosted model.
const (
	IntentProjects     = "QUESTION_ABOUT_PROJECTS"
	IntentSkills       = "QUESTION_ABOUT_SKILLS"
	IntentExperience   = "QUESTION_ABOUT_EXPERIENCE"
	IntentContact      = "QUESTION_ABOUT_CONTACT"
	IntentGreeting     = "GREETING"
	IntentFarewell     = "FAREWELL"
	IntentConversation = "GENERAL_CONVERSATION"
	IntentHelp         = "REQUEST_FOR_HELP"
)

// IntentLabels returns the candidate label set in canonical order.
func IntentLabels() []string {
	return []string{
		IntentProjects,
		IntentSkills,
		IntentExperience,
		IntentContact,
		IntentGreeting,
		IntentFarewell,
		IntentConversation,
		IntentHelp,
	}
}

// Classification is the outcome of zero-shot intent classification.
// Labels and Scores are parallel slices sorted by descending score.
type Classification struct {
	Intent     string
	Confidence float64
	Labels     []string
	Scores     []float64
}
