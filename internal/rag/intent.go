package rag

import (
	"strings"
	"time"
)

// RefusalMessage is returned for questions outside the university domain.
const RefusalMessage = "I can only help with university-related questions. " +
	"Please ask me about admissions, academics, fees, hostels, placements, " +
	"scholarships, timetables, or campus facilities."

const (
	greetingResponse  = "Hello! I'm your university assistant. How can I help you today?"
	wellBeingResponse = "I'm doing well, thank you for asking! How can I help you with university-related questions?"
	helpResponse      = "I can answer questions about admissions, academics, fees, hostels, " +
		"placements, scholarships, timetables, campus facilities, and notifications. " +
		"You can also attach PDF documents to your question."
	thanksResponse   = "You're welcome! Feel free to ask if you have any other questions."
	farewellResponse = "Goodbye! Have a great day."
)

// cannedCategory identifies a conversational small-talk category.
type cannedCategory int

const (
	categoryGreeting cannedCategory = iota
	categoryWellBeing
	categoryTime
	categoryDate
	categoryHelp
	categoryThanks
	categoryFarewell
)

// cannedPhrases maps normalized queries to their small-talk category.
// Matching is exact after normalization, so "what time is the library
// open" does not get hijacked by the time category.
var cannedPhrases = map[string]cannedCategory{
	"hello":          categoryGreeting,
	"hi":             categoryGreeting,
	"hii":            categoryGreeting,
	"hey":            categoryGreeting,
	"good morning":   categoryGreeting,
	"good afternoon": categoryGreeting,
	"good evening":   categoryGreeting,
	"namaste":        categoryGreeting,

	"how are you":       categoryWellBeing,
	"how are you doing": categoryWellBeing,
	"how is it going":   categoryWellBeing,
	"how's it going":    categoryWellBeing,
	"what's up":         categoryWellBeing,
	"whats up":          categoryWellBeing,

	"what time is it":  categoryTime,
	"what is the time": categoryTime,
	"what's the time":  categoryTime,
	"current time":     categoryTime,
	"time now":         categoryTime,

	"what is the date":    categoryDate,
	"what's the date":     categoryDate,
	"what is today's date": categoryDate,
	"today's date":         categoryDate,
	"what day is it":       categoryDate,
	"current date":         categoryDate,

	"help":            categoryHelp,
	"can you help me": categoryHelp,
	"i need help":     categoryHelp,
	"what can you do": categoryHelp,

	"thanks":             categoryThanks,
	"thank you":          categoryThanks,
	"thankyou":           categoryThanks,
	"thanks a lot":       categoryThanks,
	"thank you so much":  categoryThanks,
	"thank you very much": categoryThanks,

	"bye":        categoryFarewell,
	"goodbye":    categoryFarewell,
	"see you":    categoryFarewell,
	"good night": categoryFarewell,
}

// domainKeywords is the fixed vocabulary used to decide whether a question
// is about the university at all. Matching is case-insensitive substring
// matching against the query, so "fee" also matches "fees" and
// "fee structure". Over-matching inside unrelated words is a known and
// accepted trade-off of this heuristic.
var domainKeywords = []string{
	// Admissions
	"admission", "apply", "application", "applicant", "entrance", "cutoff",
	"eligibility", "enroll", "enrollment", "registration", "register",
	"merit", "counselling", "seat", "intake", "document", "verification",

	// Academics
	"academic", "course", "courses", "subject", "syllabus", "curriculum",
	"semester", "credit", "credits", "cgpa", "gpa", "grade", "grades",
	"marks", "internal", "external", "result", "results", "transcript",
	"attendance", "faculty", "professor", "lecture", "assignment",
	"backlog", "graduation", "degree", "diploma", "department", "branch",
	"exam", "exams", "examination", "test", "quiz", "revaluation",

	// Fees
	"fee", "fees", "tuition", "payment", "pay", "dues", "fine", "refund",
	"installment", "receipt", "concession",

	// Hostel
	"hostel", "accommodation", "room", "mess", "warden", "laundry",
	"dormitory", "residence",

	// Scholarships
	"scholarship", "scholarships", "stipend", "financial aid", "grant",
	"waiver",

	// Timetable
	"timetable", "schedule", "class", "classes", "period", "slot",
	"timing", "timings", "calendar", "holiday", "holidays", "vacation",

	// Placements
	"placement", "placements", "recruitment", "company", "companies",
	"internship", "job", "offer", "package", "ctc", "salary", "career",
	"training", "interview", "campus drive",

	// Facilities
	"facility", "facilities", "library", "lab", "laboratory", "sports",
	"gym", "gymnasium", "canteen", "cafeteria", "transport", "bus",
	"wifi", "auditorium", "medical", "infirmary", "playground",
	"parking", "bookstore",

	// Notifications and general campus life
	"notification", "notifications", "notice", "circular", "announcement",
	"event", "events", "fest", "club", "clubs", "society", "deadline",
	"university", "college", "campus", "student", "students", "ragging",
	"anti-ragging", "id card", "convocation", "alumni",
}

// Classification is the outcome of intent analysis for one query.
type Classification struct {
	// Canned is true when the query is conversational small talk; Response
	// then holds the deterministic reply and retrieval is bypassed.
	Canned   bool
	Response string
	// InDomain is true when the query matches the university keyword
	// vocabulary. Only meaningful when Canned is false.
	InDomain bool
}

// Classifier short-circuits retrieval for small talk and out-of-domain
// questions.
type Classifier struct {
	now func() time.Time
}

// NewClassifier creates a Classifier using the server clock.
func NewClassifier() *Classifier {
	return &Classifier{now: time.Now}
}

// Classify runs the two intent checks in order: conversational match
// first, then domain-relevance match.
func (c *Classifier) Classify(query string) Classification {
	normalized := normalizeQuery(query)

	if category, ok := cannedPhrases[normalized]; ok {
		return Classification{Canned: true, Response: c.cannedResponse(category)}
	}

	lowered := strings.ToLower(query)
	for _, keyword := range domainKeywords {
		if strings.Contains(lowered, keyword) {
			return Classification{InDomain: true}
		}
	}

	return Classification{InDomain: false}
}

func (c *Classifier) cannedResponse(category cannedCategory) string {
	switch category {
	case categoryGreeting:
		return greetingResponse
	case categoryWellBeing:
		return wellBeingResponse
	case categoryTime:
		return "The current time is " + c.now().Format("3:04 PM") + "."
	case categoryDate:
		return "Today is " + c.now().Format("Monday, January 2, 2006") + "."
	case categoryHelp:
		return helpResponse
	case categoryThanks:
		return thanksResponse
	case categoryFarewell:
		return farewellResponse
	default:
		return greetingResponse
	}
}

// normalizeQuery lowercases, trims, and strips trailing punctuation so
// "Hello!" matches the "hello" phrase.
func normalizeQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return strings.TrimRight(normalized, "!.? ")
}
