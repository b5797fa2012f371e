package diagnostics

import (
	"encoding/xml"

	"github.com/3rg0n/concoct/internal/cerrors"
	"github.com/3rg0n/concoct/internal/report"
)

// cppcheckResults mirrors cppcheck's --xml-version=2 schema, the format
// original_source/libConCoct/checker.py's CppCheckParser consumes via
// xml.etree.ElementTree. Struct tags are enough here, unlike Report's
// ToXML, because the element names are fixed by cppcheck itself.
type cppcheckResults struct {
	XMLName xml.Name        `xml:"results"`
	Errors  cppcheckErrList `xml:"errors"`
}

type cppcheckErrList struct {
	Errors []cppcheckError `xml:"error"`
}

type cppcheckError struct {
	ID        string             `xml:"id,attr"`
	Severity  string             `xml:"severity,attr"`
	Verbose   string             `xml:"verbose,attr"`
	Locations []cppcheckLocation `xml:"location"`
}

type cppcheckLocation struct {
	File string `xml:"file,attr"`
	Line string `xml:"line,attr"`
}

// severityKinds maps cppcheck's severity attribute to report.Kind. The
// names line up one-to-one.
var severityKinds = map[string]report.Kind{
	"error":       report.KindError,
	"warning":     report.KindWarning,
	"style":       report.KindStyle,
	"performance": report.KindPerformance,
	"portability": report.KindPortability,
	"information": report.KindInformation,
}

// ParseCppcheck converts raw cppcheck --xml-version=2 output into
// Messages. A cppcheck finding with no <location> (can happen for
// whole-file findings like "unusedFunction") yields a Message with an
// empty File/Line, matching the original's getattr-with-default
// handling of a missing location child.
func ParseCppcheck(xmlData []byte) ([]report.Message, error) {
	var results cppcheckResults
	if err := xml.Unmarshal(xmlData, &results); err != nil {
		return nil, cerrors.NewParseError("cppcheck", err)
	}

	messages := make([]report.Message, 0, len(results.Errors.Errors))
	for _, e := range results.Errors.Errors {
		kind, ok := severityKinds[e.Severity]
		if !ok {
			kind = report.KindInformation
		}
		file, line := "", ""
		if len(e.Locations) > 0 {
			file = e.Locations[0].File
			line = e.Locations[0].Line
		}
		messages = append(messages, report.NewMessage(kind, file, line, e.Verbose))
	}
	return messages, nil
}
