package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEquality(t *testing.T) {
	a := NewMessage(KindError, "solution.c", "12", "undeclared identifier")
	b := NewMessage(KindError, "solution.c", "12", "undeclared identifier")
	c := NewMessage(KindWarning, "solution.c", "12", "undeclared identifier")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMessageIsIgnored(t *testing.T) {
	assert.True(t, NewMessage(KindIgnore, "", "", "").IsIgnored())
	assert.False(t, NewMessage(KindError, "", "", "").IsIgnored())
}

func TestReportPartSucceeded(t *testing.T) {
	assert.True(t, NewReportPart(SourceCompiler, 0, nil).Succeeded())
	assert.False(t, NewReportPart(SourceCompiler, 1, nil).Succeeded())
}

func TestReportPartOrderIsPrefixOfCanonicalSequence(t *testing.T) {
	r := New()
	r.Append(NewReportPart(SourceStaticAnalyzer, 0, nil))
	r.Append(NewReportPart(SourceCompiler, 1, []Message{NewMessage(KindError, "a.c", "3", "boom")}))

	require.Len(t, r.Parts, 2)
	assert.Equal(t, SourceStaticAnalyzer, r.Parts[0].Source)
	assert.Equal(t, SourceCompiler, r.Parts[1].Source)

	_, hasTests := r.Part(SourceUnitTest)
	assert.False(t, hasTests, "cunit must be absent when gcc short-circuited it")
}

func TestJSONRoundTrip(t *testing.T) {
	r := New()
	r.Append(NewReportPart(SourceStaticAnalyzer, 0, nil))
	r.Append(NewReportPart(SourceCompiler, 0, nil))
	r.Append(NewUnitTestReportPart(0, []Message{
		NewMessage(KindError, "", "", "suite - test - Condition: x == 1"),
	}, map[string]map[string]bool{
		"suite": {"test": false, "other_test": true},
	}))

	data, err := r.ToJSON()
	require.NoError(t, err)

	got, err := ParseReportJSON(data)
	require.NoError(t, err)

	require.Len(t, got.Parts, 3)
	assert.Equal(t, r.Parts[0].Source, got.Parts[0].Source)
	assert.Equal(t, r.Parts[1].Source, got.Parts[1].Source)
	assert.Equal(t, r.Parts[2].Source, got.Parts[2].Source)
	assert.Equal(t, r.Parts[2].Tests, got.Parts[2].Tests)
	assert.Equal(t, r.Parts[2].Messages, got.Parts[2].Messages)
}

func TestJSONRoundTripPrefixReport(t *testing.T) {
	r := New()
	r.Append(NewReportPart(SourceStaticAnalyzer, 1, []Message{
		NewMessage(KindError, "solution.c", "4", "null pointer dereference"),
	}))

	data, err := r.ToJSON()
	require.NoError(t, err)

	got, err := ParseReportJSON(data)
	require.NoError(t, err)
	require.Len(t, got.Parts, 1)
	assert.Equal(t, SourceStaticAnalyzer, got.Parts[0].Source)
	_, hasCompiler := got.Part(SourceCompiler)
	assert.False(t, hasCompiler)
}

func TestXMLContainsStageAndReturnCode(t *testing.T) {
	r := New()
	r.Append(NewReportPart(SourceCompiler, 1, []Message{
		NewMessage(KindError, "solution.c", "9", "conflicting types"),
	}))

	data, err := r.ToXML()
	require.NoError(t, err)

	xmlStr := string(data)
	assert.Contains(t, xmlStr, "<report>")
	assert.Contains(t, xmlStr, `<gcc returncode="1">`)
	assert.Contains(t, xmlStr, "<type>error</type>")
	assert.Contains(t, xmlStr, "<desc>conflicting types</desc>")
}
