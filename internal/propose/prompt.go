package propose

import (
	"fmt"
	"strings"

	"mnemo/cardmill/internal/export"
)

// transcriptExcerptLimit bounds how much of a conversation is quoted back to
// the model when summarizing a rejection.
const transcriptExcerptLimit = 2000

func rulesBlock(rules []string) string {
	var b strings.Builder
	for _, r := range rules {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return b.String()
}

// analyzePrompt builds the proposal request: transcript, interests, and the
// full current rule list, with the required JSON response shape spelled out.
func analyzePrompt(conv *export.Conversation, interests, rules []string) string {
	rulesSection := ""
	if len(rules) > 0 {
		rulesSection = fmt.Sprintf(`
IMPORTANT - The user has previously rejected flashcards. Learn from these patterns and AVOID creating similar cards:
%s
`, rulesBlock(rules))
	}

	return fmt.Sprintf(`Analyze the following conversation between a user and an AI assistant.

%s

I want to remember the things that I learn from AI. Thus I'm planning to add useful concepts to Anki to leverage spaced repetition learning for better long term retention of what I learn.

My interests are: %s. Prioritize creating flashcards for information related to these topics.
%s
Your task:
1. Determine if there is information worth remembering (useful facts, commands, solutions, concepts, etc.)
2. If yes, create Anki flashcards for this information

Return your response as JSON with this exact format:
{
    "has_value": true/false,
    "flashcards": [
        {
            "front": "Question or prompt",
            "back": "Answer or information"
        }
    ]
}

Guidelines for flashcards:
- Make them concise and focused on one concept
- Avoid rote learning, include reasoning and explanation
- Include practical information like commands, configurations, solutions
- Use clear, specific questions
- Include context when needed
- If has_value is false, return an empty flashcards array

Only create flashcards if the information is genuinely useful to remember.
`, conv.Render(), strings.Join(interests, ", "), rulesSection)
}

// summarizePrompt asks the model to condense a rejection into one short rule.
// Operator feedback, when present, is the primary signal; existing rules are
// included so the new rule does not duplicate them.
func summarizePrompt(cards []Card, conv *export.Conversation, feedback string, interests, rules []string) string {
	var cardsText strings.Builder
	for _, c := range cards {
		fmt.Fprintf(&cardsText, "- Front: %s\n  Back: %s\n", c.Front, c.Back)
	}

	feedbackSection := ""
	if feedback != "" {
		feedbackSection = fmt.Sprintf(`
IMPORTANT - The user provided this feedback explaining their rejection:
"%s"

Use this feedback as the PRIMARY basis for generating the rule.
`, feedback)
	}

	existingSection := ""
	if len(rules) > 0 {
		existingSection = fmt.Sprintf(`
EXISTING RULES (do NOT duplicate these - create a new, specific rule that is different):
%s
`, rulesBlock(rules))
	}

	excerpt := conv.Render()
	if len(excerpt) > transcriptExcerptLimit {
		excerpt = excerpt[:transcriptExcerptLimit]
	}

	return fmt.Sprintf(`The user was presented with the following proposed Anki flashcards and REJECTED them:

%s

These flashcards were generated from this conversation:
%s...
%s
The user's interests are: %s
%s
The user didn't want these flashcards added. Please analyze WHY they rejected them and write a SHORT, SPECIFIC rule (1-2 sentences) about what type of information should NOT be turned into flashcards.

Focus on identifying patterns like:
- Too basic/obvious information
- Too specific to one-time tasks
- Information the user likely already knows
- Overly verbose or poorly formatted cards
- Context-dependent information that won't be useful later

Return ONLY the rule, nothing else. Be concise and actionable. Make sure your rule is DIFFERENT from the existing rules listed above.
Example: "Don't create flashcards for basic Git commands like 'git status' or 'git add' that any developer would know."
`, cardsText.String(), excerpt, feedbackSection, strings.Join(interests, ", "), existingSection)
}
