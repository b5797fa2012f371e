package diagnostics

import (
	"encoding/xml"
	"errors"

	"github.com/3rg0n/concoct/internal/cerrors"
	"github.com/3rg0n/concoct/internal/report"
)

// cunitReport mirrors the CUnit Automated Test Framework's
// CUnitAutomated-Results.xml schema, as consumed by
// original_source/libConCoct/unittest.py's CunitParser.
type cunitReport struct {
	XMLName xml.Name     `xml:"CUNIT_TEST_RUN_REPORT"`
	Listing cunitListing `xml:"CUNIT_RESULT_LISTING"`
}

type cunitListing struct {
	Suites []cunitSuite `xml:"CUNIT_RUN_SUITE"`
}

type cunitSuite struct {
	SuiteName    string            `xml:"CUNIT_RUN_SUITE_SUCCESS>SUITE_NAME"`
	SuiteNameAlt string            `xml:"CUNIT_RUN_SUITE_FAILURE>SUITE_NAME"`
	Records      []cunitTestRecord `xml:"CUNIT_RUN_SUITE_SUCCESS>CUNIT_RUN_TEST_RECORD"`
	RecordsAlt   []cunitTestRecord `xml:"CUNIT_RUN_SUITE_FAILURE>CUNIT_RUN_TEST_RECORD"`
}

type cunitTestRecord struct {
	Success *cunitTestOutcome `xml:"CUNIT_RUN_TEST_SUCCESS"`
	Failure *cunitTestFailure `xml:"CUNIT_RUN_TEST_FAILURE"`
}

type cunitTestOutcome struct {
	TestName string `xml:"TEST_NAME"`
}

type cunitTestFailure struct {
	TestName   string `xml:"TEST_NAME"`
	FileName   string `xml:"FILE_NAME"`
	LineNumber string `xml:"LINE_NUMBER"`
	Condition  string `xml:"CONDITION"`
}

func (s cunitSuite) name() string {
	if s.SuiteName != "" {
		return s.SuiteName
	}
	return s.SuiteNameAlt
}

func (s cunitSuite) records() []cunitTestRecord {
	if len(s.Records) > 0 {
		return s.Records
	}
	return s.RecordsAlt
}

// CunitResult is the parsed outcome of one unit-test run: a Message per
// failing assertion, plus a suite/test pass-fail map for the report's
// Tests field.
type CunitResult struct {
	Messages []report.Message
	Tests    map[string]map[string]bool
}

// ParseCunit converts raw CUnitAutomated-Results.xml bytes into a
// CunitResult. Empty or structurally invalid input is always an error —
// never a silent empty CunitResult — since an empty Tests map is
// indistinguishable from "every suite passed trivially" and would hide a
// sandbox that produced no artifact at all.
func ParseCunit(xmlData []byte) (*CunitResult, error) {
	if len(xmlData) == 0 {
		return nil, cerrors.NewParseError("cunit", errors.New("empty results document"))
	}

	var doc cunitReport
	if err := xml.Unmarshal(xmlData, &doc); err != nil {
		return nil, cerrors.NewParseError("cunit", err)
	}
	if len(doc.Listing.Suites) == 0 {
		return nil, cerrors.NewParseError("cunit", errors.New("results document has no suites"))
	}

	result := &CunitResult{Tests: make(map[string]map[string]bool)}
	for _, suite := range doc.Listing.Suites {
		if suite.SuiteName == "" && suite.SuiteNameAlt == "" {
			return nil, cerrors.NewParseError("cunit", errors.New("suite has neither a success nor a failure outcome"))
		}
		suiteName := suite.name()
		tests := make(map[string]bool)
		for _, rec := range suite.records() {
			switch {
			case rec.Success != nil:
				tests[rec.Success.TestName] = true
			case rec.Failure != nil:
				tests[rec.Failure.TestName] = false
				result.Messages = append(result.Messages, report.NewMessage(
					report.KindError,
					rec.Failure.FileName,
					rec.Failure.LineNumber,
					suiteName+" - "+rec.Failure.TestName+" - Condition: "+rec.Failure.Condition,
				))
			default:
				return nil, cerrors.NewParseError("cunit", errors.New("test record has neither a success nor a failure outcome"))
			}
		}
		result.Tests[suiteName] = tests
	}
	return result, nil
}
