package assistant

import "strings"

const promptPreamble = "You are an expert data analyst AI assistant embedded in a Tableau dashboard. " +
	"You have received the **raw data** from the user's current worksheet in CSV format. " +
	"**Perform the necessary calculations and analysis based on the provided data context.** " +
	"Answer the user's question clearly, precisely, and maintain a professional, analytic tone."

// BuildPrompt concatenates the fixed preamble, the user's message verbatim
// and the rendered data context.
func BuildPrompt(message, dataContext string) string {
	var b strings.Builder
	b.Grow(len(promptPreamble) + len(message) + len(dataContext) + 64)
	b.WriteString(promptPreamble)
	b.WriteString("\n\nUser question:\n")
	b.WriteString(message)
	b.WriteString("\n\nTableau data context:\n")
	b.WriteString(dataContext)
	return b.String()
}
