// Package modelname derives project and discipline information from model
// file names such as "МП4_ШКОЛ_МИНС_БФ_R23.rvt".
package modelname

import (
	"regexp"
	"strings"
)

// Unknown is used for organization and object type when a name has too few parts.
const Unknown = "Неизвестно"

var (
	extPattern       = regexp.MustCompile(`(?i)\.rvt$`)
	separatorPattern = regexp.MustCompile(`[_\s]+`)
)

// ParsedName holds the parts of a model file name.
type ParsedName struct {
	Organization string  `json:"organization"`
	ObjectType   string  `json:"object_type"`
	Project      string  `json:"project"`
	Section      Section `json:"section"`
	// Full is the name without the model file extension.
	Full string `json:"full"`
}

// StripExtension removes a trailing .rvt extension, ignoring case.
func StripExtension(filename string) string {
	return extPattern.ReplaceAllString(filename, "")
}

// Parse splits a model file name into organization, object type and project
// tokens and classifies its section. It returns nil for an empty name.
func Parse(filename string) *ParsedName {
	if filename == "" {
		return nil
	}

	full := StripExtension(filename)
	parts := tokens(full)

	p := &ParsedName{
		Organization: Unknown,
		ObjectType:   Unknown,
		Project:      full,
		Section:      ExtractSection(full),
		Full:         full,
	}
	if len(parts) > 0 {
		p.Organization = parts[0]
	}
	if len(parts) > 1 {
		p.ObjectType = parts[1]
	}
	if len(parts) > 2 {
		p.Project = parts[2]
	}
	return p
}

// ProjectOf returns the project key of a model name, or "" for an empty name.
func ProjectOf(filename string) string {
	if p := Parse(filename); p != nil {
		return p.Project
	}
	return ""
}

func tokens(name string) []string {
	raw := separatorPattern.Split(name, -1)
	out := raw[:0]
	for _, t := range raw {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
