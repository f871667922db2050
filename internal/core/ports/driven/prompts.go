package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to built-in defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSystem is the assistant's system prompt. It has no placeholders.
	PromptSystem = "system"

	// PromptUserMessage wraps the retrieved context and the question.
	// The template expects two %s placeholders: context, then question.
	PromptUserMessage = "user_message"

	// PromptNoContext replaces the context block when nothing was retrieved.
	PromptNoContext = "no_context"
)
