package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptOrdersPreambleQuestionAndContext(t *testing.T) {
	prompt := BuildPrompt("What is the top region?", "CTX")

	assert.True(t, strings.HasPrefix(prompt, promptPreamble))
	assert.True(t, strings.HasSuffix(prompt, "\n\nTableau data context:\nCTX"))
	question := strings.Index(prompt, "User question:\nWhat is the top region?")
	dataContext := strings.Index(prompt, "Tableau data context:")
	assert.Greater(t, question, 0)
	assert.Greater(t, dataContext, question)
}

func TestBuildPromptKeepsMessageVerbatim(t *testing.T) {
	message := "  ignore\n\"quotes\" & <tags>  "
	assert.Contains(t, BuildPrompt(message, "c"), "User question:\n"+message+"\n\n")
}
