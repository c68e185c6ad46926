package validation

import (
	"fmt"
	"strings"
)

// knownCourses is the course catalog used for suggestion lookups. Intended
// courses are free text matched against scholarship priority lists, so an
// unrecognized name is not fatal on its own, but we flag it with
// suggestions because a typo silently forfeits the priority-course bonus.
var knownCourses = []string{
	"BS Accountancy",
	"BS Agriculture",
	"BS Architecture",
	"BS Biology",
	"BS Business Administration",
	"BS Chemical Engineering",
	"BS Civil Engineering",
	"BS Computer Engineering",
	"BS Computer Science",
	"BS Criminology",
	"BS Education",
	"BS Electrical Engineering",
	"BS Electronics Engineering",
	"BS Hospitality Management",
	"BS Information Technology",
	"BS Mathematics",
	"BS Mechanical Engineering",
	"BS Medical Technology",
	"BS Midwifery",
	"BS Nursing",
	"BS Pharmacy",
	"BS Psychology",
	"BS Public Administration",
	"BS Social Work",
	"BS Tourism Management",
	"BA Communication",
	"BA Political Science",
}

const (
	maxCourseSuggestions = 3

	// Words shorter than this ("BS", "in", "of") carry no signal for
	// suggestion matching.
	minSuggestionWordLen = 4
)

// KnownCourse reports whether the input fuzzily matches a catalog entry.
// It is deliberately looser than the scoring engine's bidirectional
// substring rule: degree abbreviations and specializations ("BSCS
// Computer Science major in AI") should not flag a recognizable course,
// so an entry also matches when every significant word of the entry
// appears in the input.
func KnownCourse(course string) bool {
	needle := strings.ToLower(strings.TrimSpace(course))
	if needle == "" {
		return false
	}
	inputWords := wordSet(needle)
	for _, known := range knownCourses {
		candidate := strings.ToLower(known)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return true
		}
		if containsAllSignificantWords(inputWords, candidate) {
			return true
		}
	}
	return false
}

// containsAllSignificantWords requires every word of the candidate with
// at least minSuggestionWordLen characters to appear in the input.
func containsAllSignificantWords(input map[string]bool, candidate string) bool {
	significant := 0
	for _, word := range strings.Fields(candidate) {
		if len(word) < minSuggestionWordLen {
			continue
		}
		significant++
		if !input[word] {
			return false
		}
	}
	return significant > 0
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		set[word] = true
	}
	return set
}

// SuggestCourses returns catalog entries that share a word with the input,
// for "did you mean" hints.
func SuggestCourses(course string) []string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(course)))
	suggestions := []string{}
	for _, known := range knownCourses {
		lower := strings.ToLower(known)
		for _, word := range words {
			if len(word) < minSuggestionWordLen {
				continue
			}
			if strings.Contains(lower, word) {
				suggestions = append(suggestions, known)
				break
			}
		}
		if len(suggestions) == maxCourseSuggestions {
			break
		}
	}
	return suggestions
}

func appendCourseProblems(problems []FieldError, course string) []FieldError {
	if strings.TrimSpace(course) == "" || KnownCourse(course) {
		return problems
	}

	message := fmt.Sprintf("course %q is not recognized", course)
	if suggestions := SuggestCourses(course); len(suggestions) > 0 {
		message += "; did you mean: " + strings.Join(suggestions, ", ")
	}
	return append(problems, FieldError{Field: "intended_course", Message: message})
}
