package chunker

import "strings"

// tokensPerWord approximates subword tokens per space-separated Vietnamese
// syllable. Diacritics push it above the English rate.
const tokensPerWord = 1.5

// EstimateTokens gives a rough token count from the word count. Exact
// tokenization is not needed to size chunks.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * tokensPerWord)
	if tokens < 1 && strings.TrimSpace(text) != "" {
		tokens = 1
	}
	return tokens
}
