package models

import (
	"fmt"
	"strings"
)

// Source identifies where a flight record came from
type Source string

const (
	SourceSWA      Source = "swa"
	SourceUSAF     Source = "usaf"
	SourceCivilian Source = "civilian"
	SourceManual   Source = "manual"
)

// Sources lists every known source tag
var Sources = []Source{SourceSWA, SourceUSAF, SourceCivilian, SourceManual}

// ParseSource converts a user supplied tag into a Source
func ParseSource(s string) (Source, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, src := range Sources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q (expected swa, usaf, civilian or manual)", s)
}
