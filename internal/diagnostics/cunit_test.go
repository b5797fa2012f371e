package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCunitXML = `<?xml version="1.0"?>
<CUNIT_TEST_RUN_REPORT>
  <CUNIT_HEADER/>
  <CUNIT_RESULT_LISTING>
    <CUNIT_RUN_SUITE>
      <CUNIT_RUN_SUITE_SUCCESS>
        <SUITE_NAME>arithmetic</SUITE_NAME>
        <CUNIT_RUN_TEST_RECORD>
          <CUNIT_RUN_TEST_SUCCESS>
            <TEST_NAME>test_add</TEST_NAME>
          </CUNIT_RUN_TEST_SUCCESS>
        </CUNIT_RUN_TEST_RECORD>
        <CUNIT_RUN_TEST_RECORD>
          <CUNIT_RUN_TEST_FAILURE>
            <TEST_NAME>test_sub</TEST_NAME>
            <FILE_NAME>solution_test.c</FILE_NAME>
            <LINE_NUMBER>42</LINE_NUMBER>
            <CONDITION>CU_ASSERT_EQUAL(sub(2,1),1)</CONDITION>
          </CUNIT_RUN_TEST_FAILURE>
        </CUNIT_RUN_TEST_RECORD>
      </CUNIT_RUN_SUITE_SUCCESS>
    </CUNIT_RUN_SUITE>
  </CUNIT_RESULT_LISTING>
</CUNIT_TEST_RUN_REPORT>`

func TestParseCunitSuccessAndFailure(t *testing.T) {
	result, err := ParseCunit([]byte(sampleCunitXML))
	require.NoError(t, err)

	require.Contains(t, result.Tests, "arithmetic")
	assert.True(t, result.Tests["arithmetic"]["test_add"])
	assert.False(t, result.Tests["arithmetic"]["test_sub"])

	require.Len(t, result.Messages, 1)
	assert.Equal(t, "solution_test.c", result.Messages[0].File)
	assert.Equal(t, "42", result.Messages[0].Line)
	assert.Contains(t, result.Messages[0].Description, "test_sub")
}

func TestParseCunitEmptyInputIsError(t *testing.T) {
	_, err := ParseCunit(nil)
	assert.Error(t, err)
}

func TestParseCunitNoSuitesIsError(t *testing.T) {
	_, err := ParseCunit([]byte(`<CUNIT_TEST_RUN_REPORT><CUNIT_RESULT_LISTING></CUNIT_RESULT_LISTING></CUNIT_TEST_RUN_REPORT>`))
	assert.Error(t, err)
}

func TestParseCunitMalformedXMLIsError(t *testing.T) {
	_, err := ParseCunit([]byte("<<<not xml"))
	assert.Error(t, err)
}

func TestParseCunitSuiteWithNoOutcomeIsError(t *testing.T) {
	_, err := ParseCunit([]byte(`<?xml version="1.0"?>
<CUNIT_TEST_RUN_REPORT>
  <CUNIT_RESULT_LISTING>
    <CUNIT_RUN_SUITE>
    </CUNIT_RUN_SUITE>
  </CUNIT_RESULT_LISTING>
</CUNIT_TEST_RUN_REPORT>`))
	assert.Error(t, err, "a suite that is neither a success nor a failure record is a parser error")
}

func TestParseCunitRecordWithNoOutcomeIsError(t *testing.T) {
	_, err := ParseCunit([]byte(`<?xml version="1.0"?>
<CUNIT_TEST_RUN_REPORT>
  <CUNIT_RESULT_LISTING>
    <CUNIT_RUN_SUITE>
      <CUNIT_RUN_SUITE_SUCCESS>
        <SUITE_NAME>arithmetic</SUITE_NAME>
        <CUNIT_RUN_TEST_RECORD>
        </CUNIT_RUN_TEST_RECORD>
      </CUNIT_RUN_SUITE_SUCCESS>
    </CUNIT_RUN_SUITE>
  </CUNIT_RESULT_LISTING>
</CUNIT_TEST_RUN_REPORT>`))
	assert.Error(t, err, "a test record that is neither a success nor a failure is a parser error")
}
