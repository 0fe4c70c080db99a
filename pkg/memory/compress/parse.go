package compress

import (
	"strings"
	"unicode"

	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/utils"
)

const (
	// summaryWindow is how many leading lines are considered for the summary.
	summaryWindow = 5

	// summaryMaxLines is how many qualifying lines the summary joins.
	summaryMaxLines = 3

	// summaryMinLen is the minimum length for a summary candidate line.
	summaryMinLen = 20

	// noiseFloor discards extracted items at or below this length.
	noiseFloor = 10

	// conceptMaxLen separates concepts from facts: shorter items are
	// concepts, longer ones facts.
	conceptMaxLen = 50

	// placeholderSummary is used when the output has no lines at all.
	placeholderSummary = "Document imported"

	// Salvage bounds, applied to the original text when parsing yields
	// nothing.
	salvageWords    = 100
	salvageTokenLen = 6
	salvageConcepts = 10
	salvageFactLen  = 200
)

// parse extracts structured fields from unconstrained generation output.
// Generative output rarely honors strict schemas, so classification works
// from structural cues: bullet vs. prose, short vs. long.
func parse(id, name, output, rawText string) *memory.Record {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	summary, consumed := extractSummary(lines)

	var concepts, facts []string
	classify := func(item string) {
		if len(item) <= noiseFloor {
			return
		}
		if len(item) < conceptMaxLen {
			if len(concepts) < memory.MaxConcepts {
				concepts = append(concepts, item)
			}
		} else if len(facts) < memory.MaxFacts {
			facts = append(facts, item)
		}
	}

	for i, line := range lines {
		if isHeader(line) {
			continue
		}

		switch {
		case isBullet(line):
			classify(strings.TrimSpace(strings.TrimLeft(line, "-•* ")))
		case isNumbered(line):
			_, item, _ := strings.Cut(line, ".")
			classify(strings.TrimSpace(item))
		default:
			// Prose lines already folded into the summary stay out of
			// the concept/fact lists.
			if !consumed[i] {
				classify(line)
			}
		}
	}

	// Salvage: the output parsed to nothing useful, so extract directly
	// from the original text instead of leaving the document without any
	// structured memory.
	if len(concepts) == 0 && len(facts) == 0 {
		concepts, facts = salvage(rawText)
	}

	record := &memory.Record{
		ID:          id,
		Name:        name,
		Summary:     summary,
		KeyConcepts: concepts,
		Facts:       facts,
		Glossary:    map[string]string{},
		Structure:   structureCompressed,
		RawText:     rawText,
	}
	record.Clip()

	return record
}

// extractSummary joins the leading prose lines into a summary. Collection
// stops at the first list marker so list items never bleed into the
// summary. Returns the indexes of the lines it consumed.
func extractSummary(lines []string) (string, map[int]bool) {
	consumed := make(map[int]bool)

	window := lines
	if len(window) > summaryWindow {
		window = window[:summaryWindow]
	}

	var parts []string
	for i, line := range window {
		if isBullet(line) || isNumbered(line) {
			break
		}
		if isHeader(line) {
			continue
		}
		if len(line) > summaryMinLen {
			parts = append(parts, line)
			consumed[i] = true
			if len(parts) == summaryMaxLines {
				break
			}
		}
	}

	if len(parts) > 0 {
		return strings.Join(parts, " "), consumed
	}
	if len(lines) > 0 {
		return lines[0], consumed
	}
	return placeholderSummary, consumed
}

// salvage extracts concepts and facts straight from the raw text: long
// tokens from the opening words become concepts, the opening characters
// become the single fact.
func salvage(rawText string) ([]string, []string) {
	words := strings.Fields(rawText)
	if len(words) > salvageWords {
		words = words[:salvageWords]
	}

	concepts := []string{}
	for _, word := range words {
		if len(word) <= salvageTokenLen {
			continue
		}
		concepts = append(concepts, strings.Trim(word, ".,!?"))
		if len(concepts) == salvageConcepts {
			break
		}
	}

	fact := utils.Clip(rawText, salvageFactLen)

	facts := []string{}
	if fact != "" {
		facts = append(facts, fact)
	}

	return concepts, facts
}

func isHeader(line string) bool {
	// A bare trailing colon marks a section label ("Key Concepts:",
	// "Important Facts:") regardless of wording.
	if !isBullet(line) && !isNumbered(line) && strings.HasSuffix(line, ":") {
		return true
	}

	lower := strings.ToLower(line)
	for _, marker := range []string{"summary:", "concept:", "fact:", "point:"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}

func isNumbered(line string) bool {
	if line == "" || !unicode.IsDigit(rune(line[0])) {
		return false
	}

	prefix := line
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return strings.Contains(prefix, ".")
}
