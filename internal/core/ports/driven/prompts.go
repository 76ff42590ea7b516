package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names fall back to a built-in default where one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Placeholders are filled with fmt.Sprintf.
const (
	// PromptSummarise expects %d (min words), %d (max words) and %s (text).
	PromptSummarise = "summarise"

	// PromptAnswer expects %s (document text) and %s (question).
	PromptAnswer = "answer"

	// PromptQuestions expects %d (count) and %s (numbered excerpts).
	PromptQuestions = "questions"

	// PromptGrade expects %s (question), %s (context) and %s (answer).
	PromptGrade = "grade"
)

// PromptStoreAware is implemented by services whose prompts can be customised.
type PromptStoreAware interface {
	// SetPromptStore sets the store used for prompt templates.
	// Without one, built-in defaults are used.
	SetPromptStore(store PromptStore)
}

// DefaultPrompts are the built-in templates for every well-known prompt.
var DefaultPrompts = map[string]string{
	PromptSummarise: `Summarise the following text in at least %d and at most %d words.
Write plain prose covering the key points. Do not add a preamble or a title.

Text:
%s

Summary:`,

	PromptAnswer: `Answer the question using only the document below.
If the document does not contain the answer, reply with exactly NO_ANSWER.

Document:
%s

Question: %s

Answer:`,

	PromptQuestions: `Write %d questions that test understanding of a document.
Write one question for each numbered excerpt below. Each question must be answerable from its excerpt alone.
Reply with JSON only, in this form:
{"questions": [{"question": "...", "context": "the excerpt the question is based on"}]}

Excerpts:
%s`,

	PromptGrade: `You are grading an answer to a reading comprehension question.

Question: %s

Reference passage:
%s

Answer given: %s

Decide whether the answer is correct according to the passage. Minor wording differences are fine.
Reply with JSON only, in this form:
{"is_correct": true, "feedback": "one or two sentences for the reader", "reference": "the sentence from the passage that supports the verdict"}`,
}

// LoadPrompt returns the named template from store, or the built-in
// default when store is nil or cannot provide it.
func LoadPrompt(store PromptStore, name string) string {
	if store != nil {
		if prompt, err := store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return DefaultPrompts[name]
}
