package rag

import "strings"

// InsufficientContextAnswer is the fixed strict-mode response when no
// context survives filtering.
const InsufficientContextAnswer = "The provided documents do not contain sufficient information to answer this question"

// UploadedContextDomain marks context items that were chunked from a
// document attached to the current request rather than retrieved from
// the persisted corpus.
const UploadedContextDomain = "uploaded_context"

// UploadedContextScore is the fixed relevance score assigned to uploaded
// content so it dominates context selection for the current request.
const UploadedContextScore = 0.95

// UploadedSourceLabel is reported as the answer source whenever uploaded
// content participated in the context.
const UploadedSourceLabel = "Uploaded documents + University data"

// FallbackSourceLabel is reported when no persisted candidate carries a
// usable file or domain identifier.
const FallbackSourceLabel = "University documents"

// PromptPolicy is one cell of the prompt decision table.
type PromptPolicy struct {
	// System is the system prompt sent ahead of the user turn.
	System string
	// MaxTokens is the generation budget; structured answers get a
	// larger budget than concise ones.
	MaxTokens int
	// Temperature favors determinism over creativity.
	Temperature float32
}

const strictSystemPrompt = `You are a university assistant. Answer questions STRICTLY based on the provided context from university documents.

STRICT GUIDELINES:
- Answer ONLY based on the information provided in the context
- Do NOT use general knowledge or information outside the context
- If the context doesn't contain enough information, say "` + InsufficientContextAnswer + `"`

const permissiveSystemPrompt = `You are a university assistant. Answer questions based on the provided context from university documents and uploaded files.

GUIDELINES:
- Use the information provided in the context to answer the question
- Prioritize information from uploaded documents when available
- If you find relevant information in the context, provide a helpful and detailed answer
- Be informative and give specific details from the documents
- If the context contains partial information, provide what you can and mention what aspects might need more information`

const conciseFormatRules = `
- Give direct, concise answers in 2-3 lines maximum
- Use ranges or summaries instead of listing every record`

const structuredFormatRules = `
FORMAT RULES:
- Do not use emojis
- Aggregate information instead of enumerating every record
- Use ranges for numeric spreads (e.g. "80,000-1,20,000 INR")
- Put each heading on its own line
- Keep the answer within 6-8 lines`

// structuredKeywords triggers the structured-format prompt. Substring
// matching, same semantics as the domain vocabulary.
var structuredKeywords = []string{
	"fee structure",
	"timetable",
	"schedule",
	"facilities",
	"breakdown",
	"structure",
	"list of",
	"details of",
	"compare",
	"statistics",
	"placement record",
	"course list",
	"hostel options",
}

// policyKey indexes the decision table: grounding strictness on one axis,
// formatting strictness on the other.
type policyKey struct {
	hasUploadedContext bool
	structuredQuery    bool
}

var policyTable = map[policyKey]PromptPolicy{
	{false, false}: {System: strictSystemPrompt + conciseFormatRules, MaxTokens: 300, Temperature: 0.2},
	{false, true}:  {System: strictSystemPrompt + "\n" + structuredFormatRules, MaxTokens: 500, Temperature: 0.2},
	{true, false}:  {System: permissiveSystemPrompt + conciseFormatRules, MaxTokens: 300, Temperature: 0.2},
	{true, true}:   {System: permissiveSystemPrompt + "\n" + structuredFormatRules, MaxTokens: 500, Temperature: 0.2},
}

// SelectPolicy resolves the prompt policy for a context composition and
// query shape.
func SelectPolicy(hasUploadedContext, structuredQuery bool) PromptPolicy {
	return policyTable[policyKey{hasUploadedContext, structuredQuery}]
}

// IsStructuredQuery reports whether the query asks for data that benefits
// from structured formatting.
func IsStructuredQuery(query string) bool {
	lowered := strings.ToLower(query)
	for _, keyword := range structuredKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// HasUploadedContext reports whether any context item came from a
// just-uploaded document.
func HasUploadedContext(items []RetrievedCandidate) bool {
	for _, item := range items {
		if item.Domain == UploadedContextDomain {
			return true
		}
	}
	return false
}
