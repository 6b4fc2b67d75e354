package dispatcher

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const (
	minResponseLength = 50
	// Responses this short are too short in every format.
	shortResponseFloor = 10
	refusalWindow     = 200
	freeTextThreshold = 0.5
	emptyStructScore  = 0.3
)

var refusalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(sorry|i'm sorry|i am sorry|i cannot|i can't|i apologize|i don't have)`),
	regexp.MustCompile(`^(as an ai|i'm an ai)`),
	regexp.MustCompile(`error|failed|unable to`),
}

var codeFence = regexp.MustCompile("```(?:json)?")

// StripCodeFences removes Markdown code fence markers around structured output.
func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// Validate judges whether a generated response is usable. A refusal is
// reported as such even when it is short. An empty object or array longer
// than shortResponseFloor reports its emptiness rather than its length.
func Validate(text string, format models.ExpectedFormat) models.Validation {
	trimmed := strings.TrimSpace(text)

	head := strings.ToLower(trimmed)
	if r := []rune(head); len(r) > refusalWindow {
		head = string(r[:refusalWindow])
	}
	for _, pattern := range refusalPatterns {
		if pattern.MatchString(head) {
			return models.Validation{Valid: false, Score: 0, Reason: "refusal or error"}
		}
	}

	var parsed any
	parseErr := errNotStructured
	if format == models.FormatStructured {
		parseErr = json.Unmarshal([]byte(StripCodeFences(trimmed)), &parsed)
		if parseErr == nil && !isStructure(parsed) {
			parseErr = errNotStructured
		}
		if parseErr == nil && isEmptyStructure(parsed) && len([]rune(trimmed)) > shortResponseFloor {
			return models.Validation{Valid: false, Score: emptyStructScore, Reason: "empty structured output"}
		}
	}

	if len([]rune(trimmed)) < minResponseLength {
		return models.Validation{Valid: false, Score: 0, Reason: "too short"}
	}

	if format == models.FormatStructured {
		if parseErr != nil {
			return models.Validation{Valid: false, Score: 0, Reason: "invalid structured output"}
		}
		return models.Validation{Valid: true, Score: 1}
	}

	return validateFreeText(trimmed)
}

var errNotStructured = errors.New("not structured")

// isStructure reports whether v is a JSON object or array. Bare scalars are
// not structured output.
func isStructure(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func isEmptyStructure(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func validateFreeText(text string) models.Validation {
	words := len(strings.Fields(text))

	structure := 0.8
	if strings.Contains(text, "\n") || strings.Contains(text, ".") {
		structure = 1.2
	}

	score := math.Min(1, float64(words)/100*structure)
	if score > freeTextThreshold {
		return models.Validation{Valid: true, Score: score}
	}

	return models.Validation{Valid: false, Score: score, Reason: "low quality"}
}
