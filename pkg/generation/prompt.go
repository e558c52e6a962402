package generation

import "fmt"

// lengthGuide is advisory only; generated text is never validated against it.
const lengthGuide = "Length guide: short (300 words), medium (600 words), long (1000 words)."

// BuildPrompt renders the single natural-language instruction sent to the provider.
func BuildPrompt(req Request) string {
	return fmt.Sprintf("Write a %s %s about: %s.\nMake it engaging and well-structured.\n%s",
		req.Length, req.Style, req.Topic, lengthGuide)
}
