package seed

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Formatter renders one seed record as natural language for embedding.
type Formatter func(record map[string]any) string

// formatters maps a knowledge domain to its record formatter. Domains
// without an entry fall back to flattenRecord.
var formatters = map[string]Formatter{
	"academics":     formatAcademics,
	"fees":          formatFees,
	"hostel":        formatHostel,
	"scholarships":  formatScholarships,
	"timetable":     formatTimetable,
	"placements":    formatPlacements,
	"admission":     formatAdmission,
	"facilities":    formatFacilities,
	"notifications": formatNotifications,
}

// Render converts a seed record into embedding text for the given domain.
func Render(domain string, record map[string]any) string {
	if format, ok := formatters[domain]; ok {
		return strings.TrimSpace(format(record))
	}
	return strings.TrimSpace(flattenRecord(record))
}

// flattenRecord renders an arbitrary record as "key: value" pairs joined
// with ". ", with keys sorted for stable output.
func flattenRecord(record map[string]any) string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, stringify(record[key])))
	}
	return strings.Join(parts, ". ")
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				encoded, _ := json.Marshal(obj)
				parts = append(parts, string(encoded))
				continue
			}
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		encoded, _ := json.Marshal(v)
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatNumber prints JSON numbers without a trailing ".0" for integral
// values.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func str(record map[string]any, key string) string {
	return stringify(record[key])
}

func boolean(record map[string]any, key string) bool {
	b, _ := record[key].(bool)
	return b
}

func number(record map[string]any, key string) float64 {
	n, _ := record[key].(float64)
	return n
}

func objects(record map[string]any, key string) []map[string]any {
	raw, _ := record[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringList(record map[string]any, key string) string {
	raw, _ := record[key].([]any)
	parts := make([]string, 0, len(raw))
	for _, item := range raw {
		parts = append(parts, stringify(item))
	}
	return strings.Join(parts, ", ")
}

func formatAcademics(record map[string]any) string {
	var courses strings.Builder
	for _, course := range objects(record, "courses") {
		fmt.Fprintf(&courses,
			"%s (%s) taught by %s. The student has %s%% attendance with internal marks of %s and external marks of %s, earning a %s grade and %s status. ",
			str(course, "courseName"), str(course, "courseCode"), str(course, "faculty"),
			str(course, "attendancePercentage"), str(course, "internalMarks"), str(course, "externalMarks"),
			str(course, "grade"), str(course, "resultStatus"),
		)
	}

	eligibility := "They are not yet eligible for graduation."
	if boolean(record, "graduationEligibility") {
		eligibility = "They are eligible for graduation."
	}

	return fmt.Sprintf("Student %s has a CGPA of %s with %s total credits. %s %s",
		str(record, "userId"), str(record, "cgpa"), str(record, "totalCredits"),
		eligibility, strings.TrimSpace(courses.String()))
}

func formatFees(record map[string]any) string {
	var structure map[string]any
	if items := objects(record, "feeStructure"); len(items) > 0 {
		structure = items[0]
	}

	var payments strings.Builder
	for _, payment := range objects(record, "payments") {
		fmt.Fprintf(&payments, "Payment of %s INR was made on %s via %s with %s status. ",
			str(payment, "amount"), str(payment, "date"), str(payment, "mode"), str(payment, "status"))
	}

	dues := "All fees are paid up."
	if number(record, "dues") > 0 {
		dues = fmt.Sprintf("There are pending dues of %s INR.", str(record, "dues"))
	}

	return fmt.Sprintf(
		"For student %s, the semester %s fee structure includes tuition fee of %s INR, hostel fee of %s INR, mess fee of %s INR, and transport fee of %s INR, totaling %s INR. %s %s",
		str(record, "userId"), str(structure, "semester"),
		str(structure, "tuitionFee"), str(structure, "hostelFee"),
		str(structure, "messFee"), str(structure, "transportFee"),
		str(structure, "totalAmount"), dues, strings.TrimSpace(payments.String()))
}

func formatHostel(record map[string]any) string {
	allotment := "has not been allotted"
	placement := fmt.Sprintf("They have applied for %s.", str(record, "hostelName"))
	if boolean(record, "isAllotted") {
		allotment = "has been allotted"
		placement = fmt.Sprintf("They are assigned to %s in room %s.",
			str(record, "hostelName"), str(record, "roomNumber"))
	}

	rules := "Hostel rules acceptance is pending."
	if boolean(record, "rulesAccepted") {
		rules = "They have accepted the hostel rules."
	}

	return fmt.Sprintf(
		"Student %s %s hostel accommodation. %s The annual hostel fee is %s INR with %s meal plan. %s",
		str(record, "userId"), allotment, placement,
		str(record, "fees"), str(record, "messPlan"), rules)
}

func formatScholarships(record map[string]any) string {
	return fmt.Sprintf(
		"Student %s has applied for the %s scholarship worth %s INR. Their application status is %s and they are %s for this scholarship. The application was submitted on %s. Required documents include %s.",
		str(record, "userId"), str(record, "name"), str(record, "amount"),
		str(record, "status"), str(record, "eligibilityStatus"),
		str(record, "appliedOn"), stringList(record, "documents"))
}

func formatTimetable(record map[string]any) string {
	var schedule strings.Builder
	for _, slot := range objects(record, "timetable") {
		fmt.Fprintf(&schedule, "On %s, %s class is scheduled from %s to %s in room %s with %s. ",
			str(slot, "day"), str(slot, "subject"), str(slot, "startTime"),
			str(slot, "endTime"), str(slot, "room"), str(slot, "faculty"))
	}

	return fmt.Sprintf("Weekly schedule for student %s: %s",
		str(record, "userId"), strings.TrimSpace(schedule.String()))
}

func formatPlacements(record map[string]any) string {
	var companies strings.Builder
	for _, company := range objects(record, "companiesApplied") {
		fmt.Fprintf(&companies, "Applied to %s for %s position offering %s package with %s status. ",
			str(company, "companyName"), str(company, "role"),
			str(company, "package"), str(company, "status"))
	}

	var offers strings.Builder
	for _, offer := range objects(record, "offers") {
		fmt.Fprintf(&offers, "Received offer from %s for %s position with %s CTC, joining date is %s. ",
			str(offer, "company"), str(offer, "role"),
			str(offer, "ctc"), str(offer, "joiningDate"))
	}

	eligible := "not eligible"
	if boolean(record, "eligibility") {
		eligible = "eligible"
	}
	registered := "has not registered"
	if boolean(record, "registered") {
		registered = "has registered"
	}

	return fmt.Sprintf(
		"Student %s is %s for campus placements and %s for placement activities. Training programs completed: %s. %s %s",
		str(record, "userId"), eligible, registered,
		stringList(record, "trainingPrograms"),
		strings.TrimSpace(companies.String()), strings.TrimSpace(offers.String()))
}

func formatAdmission(record map[string]any) string {
	docs := make([]string, 0)
	for _, doc := range objects(record, "documentsSubmitted") {
		status := "pending verification"
		if boolean(doc, "verified") {
			status = "verified"
		}
		docs = append(docs, fmt.Sprintf("%s %s", str(doc, "docType"), status))
	}

	return fmt.Sprintf(
		"Applicant %s with application ID %s has %s admission status. They scored %s in entrance exam with cutoff rank %s. Document status: %s.",
		str(record, "userId"), str(record, "applicationId"),
		str(record, "admissionStatus"), str(record, "entranceScore"),
		str(record, "cutoffRank"), strings.Join(docs, ", "))
}

func formatFacilities(record map[string]any) string {
	active := "is currently inactive"
	if boolean(record, "isActive") {
		active = "is currently active"
	}

	return fmt.Sprintf(
		"The %s facility %s. Location: %s. Capacity: %s people. %s Available amenities: %s.",
		str(record, "facilityName"), active, str(record, "location"),
		str(record, "capacity"), str(record, "description"),
		stringList(record, "amenities"))
}

func formatNotifications(record map[string]any) string {
	read := "This notification is unread."
	if boolean(record, "isRead") {
		read = "This notification has been read."
	}

	return fmt.Sprintf(
		"Notification for %s: %s This is a %s priority %s notification sent on %s. %s",
		str(record, "userId"), str(record, "message"), str(record, "type"),
		str(record, "category"), str(record, "sentAt"), read)
}
