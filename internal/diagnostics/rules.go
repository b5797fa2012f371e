package diagnostics

import (
	"regexp"

	"github.com/3rg0n/concoct/internal/report"
)

// rule is one line-oriented pattern match: if pattern matches a line,
// emit a Message built from the named capture groups. A nil group index
// yields an empty field, matching spec.md §4.1.
//
// Precomputed once at package init into an immutable table — replacing
// the original's mutable class-level pattern list that got its patterns
// compiled lazily on first use (§9's "global mutable class-level pattern
// list" redesign flag).
type rule struct {
	kind      report.Kind
	fileGroup int // -1 means "no group"
	lineGroup int
	descGroup int
	pattern   *regexp.Regexp
}

const noGroup = -1

func compileRule(kind report.Kind, fileGroup, lineGroup, descGroup int, pattern string) rule {
	return rule{
		kind:      kind,
		fileGroup: fileGroup,
		lineGroup: lineGroup,
		descGroup: descGroup,
		pattern:   regexp.MustCompile(pattern),
	}
}

// group returns groups[idx], or "" if idx is noGroup or out of range.
func group(groups []string, idx int) string {
	if idx == noGroup || idx >= len(groups) {
		return ""
	}
	return groups[idx]
}

// compilerRules is the ordered compiler-diagnostic family. Ordering is
// significant: more specific rules must precede the catch-alls, ported
// rule-for-rule from original_source/libConCoct/compiler.py's
// gcc_patterns (capture-group indices there are 0-based into
// match.groups(), which excludes group 0/the whole match — Go's
// FindStringSubmatch includes the whole match at index 0, so every
// index here is the Python index + 1).
var compilerRules = []rule{
	compileRule(report.KindIgnore, noGroup, noGroup, noGroup,
		`^(.*?):(\d+):(\d+:)? .*\(Each undeclared identifier is reported only once.*`),
	compileRule(report.KindIgnore, noGroup, noGroup, noGroup,
		`^(.*?):(\d+):(\d+:)? .*for each function it appears in\.\).*`),
	compileRule(report.KindIgnore, noGroup, noGroup, noGroup,
		`^(.*?):(\d+):(\d+:)? .*this will be reported only once per input file.*`),
	compileRule(report.KindError, 1, 2, 4,
		"^(.*?):(\\d+):(\\d+:)? [Ee]rror: ([`'\"](.*)['\"] undeclared .*)"),
	compileRule(report.KindError, 1, 2, 4,
		"^(.*?):(\\d+):(\\d+:)? [Ee]rror: (conflicting types for .*[`'\"](.*)['\"].*)"),
	compileRule(report.KindError, 1, 2, 4,
		"^(.*?):(\\d+):(\\d+:)? (parse error before.*[`'\"](.*)['\"].*)"),
	compileRule(report.KindWarning, 1, 2, 4,
		"^(.*?):(\\d+):(\\d+:)? [Ww]arning: ([`'\"](.*)['\"] defined but not used.*)"),
	compileRule(report.KindWarning, 1, 2, 4,
		"^(.*?):(\\d+):(\\d+:)? [Ww]arning: (conflicting types for .*[`'\"](.*)['\"].*)"),
	compileRule(report.KindWarning, 1, 2, 5,
		"^(.*?):(\\d+):(\\d+:)? ([Ww]arning:)?\\s*(the use of [`'\"](.*)['\"] is dangerous, better use [`'\"](.*)['\"].*)"),
	compileRule(report.KindInfo, 1, 2, 4,
		`^(.*?):(\d+):(\d+:)?\s*(.*((instantiated)|(required)) from .*)`),
	compileRule(report.KindError, 1, 2, 7,
		`^(.*?):(\d+):(\d+:)?\s*(([Ee]rror)|(ERROR)): (.*)`),
	compileRule(report.KindWarning, 1, 2, 7,
		`^(.*?):(\d+):(\d+:)?\s*(([Ww]arning)|(WARNING)): (.*)`),
	compileRule(report.KindInfo, 1, 2, 9,
		`^(.*?):(\d+):(\d+:)?\s*(([Nn]ote)|(NOTE)|([Ii]nfo)|(INFO)): (.*)`),
	compileRule(report.KindError, 1, 2, 4,
		`^(.*?):(\d+):(\d+:)? (.*)`),
}

// linkerRules is the ordered linker-diagnostic family, run against every
// line in addition to compilerRules. Ported from ld_patterns.
var linkerRules = []rule{
	compileRule(report.KindIgnore, 1, noGroup, 3,
		"^(.*?):?(\\(\\.\\w+\\+.*\\))?:\\s*(In function [`'\"](.*)['\"]:)"),
	compileRule(report.KindWarning, 1, 2, 5,
		"^(.*?):(\\d+):(\\d+:)? ([Ww]arning:)?\\s*(the use of [`'\"](.*)['\"] is dangerous, better use [`'\"](.*)['\"].*)"),
	compileRule(report.KindWarning, 1, noGroup, 2,
		`^(.*?):?\(\.\w+\+.*\): [Ww]arning:? (.*)`),
	compileRule(report.KindError, 1, noGroup, 2,
		`^(.*?):?\(\.\w+\+.*\): (.*)`),
	compileRule(report.KindWarning, noGroup, noGroup, 3,
		`^(.*[/\\])?ld(\.exe)?: [Ww]arning:? (.*)`),
	compileRule(report.KindError, noGroup, noGroup, 3,
		`^(.*[/\\])?ld(\.exe)?: (.*)`),
}
