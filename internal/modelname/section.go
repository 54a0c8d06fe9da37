package modelname

import (
	"regexp"
	"strings"
)

// Section is a discipline code recognized in a model file name.
type Section string

const (
	SectionAR    Section = "АР"
	SectionAI    Section = "АИ"
	SectionKR    Section = "КР"
	SectionOV    Section = "ОВ"
	SectionVK    Section = "ВК"
	SectionEOM   Section = "ЭОМ"
	SectionGP    Section = "ГП"
	SectionOther Section = "Прочее"
)

var sectionInfo = map[Section]struct {
	code  string
	label string
}{
	SectionAR:    {"AR", "АР (Архитектура)"},
	SectionAI:    {"AI", "АИ (Интерьеры)"},
	SectionKR:    {"KR", "КР (Конструкции)"},
	SectionOV:    {"OV", "ОВ (Вентиляция)"},
	SectionVK:    {"VK", "ВК (Водоснабжение)"},
	SectionEOM:   {"EOM", "ЭОМ (Электрика)"},
	SectionGP:    {"GP", "ГП (Генплан)"},
	SectionOther: {"Other", "Прочее"},
}

// Code returns the Latin discipline code (AR, KR, ..., Other).
func (s Section) Code() string {
	if info, ok := sectionInfo[s]; ok {
		return info.code
	}
	return sectionInfo[SectionOther].code
}

// Label returns the section with its discipline name, e.g. "АР (Архитектура)".
func (s Section) Label() string {
	if info, ok := sectionInfo[s]; ok {
		return info.label
	}
	return sectionInfo[SectionOther].label
}

func (s Section) String() string {
	return string(s)
}

// Sections returns all sections in classification order, Other last.
func Sections() []Section {
	out := make([]Section, 0, len(sectionRules)+1)
	for _, r := range sectionRules {
		out = append(out, r.section)
	}
	return append(out, SectionOther)
}

// ParseSection resolves a section from its Cyrillic or Latin code.
func ParseSection(s string) (Section, bool) {
	s = strings.TrimSpace(s)
	for sec, info := range sectionInfo {
		if strings.EqualFold(s, string(sec)) || strings.EqualFold(s, info.code) {
			return sec, true
		}
	}
	return "", false
}

type sectionRule struct {
	section Section
	pattern *regexp.Regexp
}

// sectionRules are evaluated top to bottom; the first match wins.
// A code must follow an underscore or whitespace separator.
var sectionRules = []sectionRule{
	{SectionAR, regexp.MustCompile(`(?i)[_\s](АР|AR)`)},
	{SectionAI, regexp.MustCompile(`(?i)[_\s](АИ|AI)`)},
	{SectionKR, regexp.MustCompile(`(?i)[_\s](КР|КЖ|КМ)`)},
	{SectionOV, regexp.MustCompile(`(?i)[_\s](ОВ|OV)`)},
	{SectionVK, regexp.MustCompile(`(?i)[_\s](ВК|VK)`)},
	{SectionEOM, regexp.MustCompile(`(?i)[_\s](ЭМ|ЭО|EM)`)},
	{SectionGP, regexp.MustCompile(`(?i)[_\s](ГП|GP)`)},
}

// ExtractSection classifies a model name into a discipline section.
// Names without a recognizable code fall into SectionOther.
func ExtractSection(name string) Section {
	if name == "" {
		return SectionOther
	}

	upper := strings.ToUpper(name)
	for _, r := range sectionRules {
		if r.pattern.MatchString(upper) {
			return r.section
		}
	}
	return SectionOther
}
