package diagnostics

import (
	"bufio"
	"strings"

	"github.com/3rg0n/concoct/internal/report"
)

// CompilerParser turns gcc/ld stderr text into Messages, grounded
// on original_source/libConCoct/compiler.py's CompilerGccParser.
//
// CollectAllMatches resolves the open question of whether a line that
// matches more than one rule should emit one Message or all of them.
// The original's parser effectively emitted one Message per matching
// rule for every rule family checked against that line (it never
// short-circuited after the first hit within a family), so the default
// here (true) preserves that actual behavior rather than the possibly
// intended single-match one. Set it to false to keep only the first
// match per rule family on each line; a line that matches both a
// compiler rule and a linker rule still yields two Messages.
type CompilerParser struct {
	CollectAllMatches bool
}

// NewCompilerParser returns a CompilerParser with the default,
// original-preserving toggle setting.
func NewCompilerParser() *CompilerParser {
	return &CompilerParser{CollectAllMatches: true}
}

// Parse scans output line by line against the compiler and linker rule
// families. Lines matching no rule produce no Message (they are
// typically blank lines or banner text), matching the original's
// silent-skip behavior.
func (p *CompilerParser) Parse(output string) []report.Message {
	var messages []report.Message
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		messages = append(messages, p.matchLine(line, compilerRules)...)
		messages = append(messages, p.matchLine(line, linkerRules)...)
	}
	return messages
}

func (p *CompilerParser) matchLine(line string, rules []rule) []report.Message {
	var out []report.Message
	for _, r := range rules {
		groups := r.pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		out = append(out, report.NewMessage(
			r.kind,
			group(groups, r.fileGroup),
			group(groups, r.lineGroup),
			group(groups, r.descGroup),
		))
		if !p.CollectAllMatches {
			break
		}
	}
	return out
}
