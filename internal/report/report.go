package report

// Source names the pipeline stage that produced a ReportPart. These are
// the exact wire names spec.md §6 requires as JSON/XML keys.
type Source string

const (
	SourceStaticAnalyzer Source = "cppcheck"
	SourceCompiler       Source = "gcc"
	SourceUnitTest       Source = "cunit"
)

// ReportPart holds the diagnostics from one pipeline stage. Tests is
// only populated for the unit-test stage, and only when parsing
// succeeded; it is nil otherwise, never an empty-but-present map.
type ReportPart struct {
	Source     Source
	ReturnCode int
	Messages   []Message
	Tests      map[string]map[string]bool
}

// NewReportPart builds a ReportPart with no test map.
func NewReportPart(source Source, returnCode int, messages []Message) ReportPart {
	return ReportPart{Source: source, ReturnCode: returnCode, Messages: messages}
}

// NewUnitTestReportPart builds the cunit ReportPart, the only one that
// ever carries a Tests map.
func NewUnitTestReportPart(returnCode int, messages []Message, tests map[string]map[string]bool) ReportPart {
	return ReportPart{Source: SourceUnitTest, ReturnCode: returnCode, Messages: messages, Tests: tests}
}

// Succeeded reports whether this stage's tool exited zero.
func (p ReportPart) Succeeded() bool {
	return p.ReturnCode == 0
}

// Report is the ordered sequence of ReportParts produced by one grading
// run. It grows monotonically during a run (via Append) and is treated
// as read-only once returned to the caller.
type Report struct {
	Parts []ReportPart
}

// New returns an empty Report.
func New() *Report {
	return &Report{}
}

// Append adds one ReportPart, preserving stage order.
func (r *Report) Append(part ReportPart) {
	r.Parts = append(r.Parts, part)
}

// Part returns the ReportPart for the given stage source, and whether it
// is present — a Report may be a strict prefix of
// [cppcheck, gcc, cunit] when an earlier stage short-circuited the rest.
func (r *Report) Part(source Source) (ReportPart, bool) {
	for _, p := range r.Parts {
		if p.Source == source {
			return p, true
		}
	}
	return ReportPart{}, false
}
