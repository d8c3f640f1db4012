package generate

import (
	"fmt"

	"github.com/codevault-app/codevault/internal/artifact"
)

// DefaultSystemPrompt is the persona and formatting instruction sent as the
// system turn on every completion. It can be overridden through
// WithSystemPrompt so deployments (and tests) can substitute their own.
const DefaultSystemPrompt = `You are CodeVault AI, an expert senior full-stack developer. Your task is to generate complete, production-ready website code based on user requests.

GENERATION RULES:
1. ALWAYS return COMPLETE, WORKING code
2. Use modern HTML5, CSS3, and JavaScript/React
3. Include Tailwind CSS when appropriate
4. Make responsive designs
5. Add comments for complex logic
6. Include sample API integrations when relevant
7. Ensure code is secure and follows best practices

RESPONSE FORMAT:
- Use code blocks with language tags
- Provide HTML, CSS, and JS separately
- Include deployment instructions if needed
- Suggest improvements

DO NOT include explanations outside code blocks unless absolutely necessary.`

// modificationPrompt synthesizes the prompt for a modify request: the prior
// bundle serialized as JSON plus the user's change instructions, asking the
// model to answer in the same fenced format.
func modificationPrompt(prior artifact.Bundle, instructions string) string {
	return fmt.Sprintf(`Modify the following code based on these instructions: %s

Current code:
%s

Return ONLY the modified code in the same format.`, instructions, prior.Serialize())
}
