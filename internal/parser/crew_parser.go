package parser

import (
	"regexp"
	"strings"
)

// Crew is the result of parsing a combined "POSITION NAME [ID]" field
type Crew struct {
	Position string // CA or FO, empty if unknown
	Name     string
	ID       string
}

var (
	crewRegex     = regexp.MustCompile(`^(FO|CA)\s+(.+?)\s*(?:\[(\d+)\])?$`)
	nicknameRegex = regexp.MustCompile(`\s*\*[^*]+\*\s*`)
	spaceRegex    = regexp.MustCompile(`\s+`)
)

// Placeholders written in place of a crew member
var noCrewValues = map[string]bool{
	"DEADHEADING":   true,
	"NOT AVAILABLE": true,
}

// ParseCrew parses a crew field like "FO  ZURCA JULIAN *JACKSON* [114706]".
// Nicknames between asterisks are dropped. Text that does not follow the
// grammar is kept whole as the name. Returns false when there is no crew.
func ParseCrew(input string) (Crew, bool) {
	input = strings.TrimSpace(input)
	if input == "" || noCrewValues[strings.ToUpper(input)] {
		return Crew{}, false
	}

	matches := crewRegex.FindStringSubmatch(input)
	if matches == nil {
		return Crew{Name: input}, true
	}

	name := nicknameRegex.ReplaceAllString(matches[2], " ")
	name = strings.TrimSpace(spaceRegex.ReplaceAllString(name, " "))
	if name == "" {
		// "FO *NICK*" leaves nothing usable
		return Crew{Name: input}, true
	}

	return Crew{
		Position: matches[1],
		Name:     name,
		ID:       matches[3],
	}, true
}
