package predictor

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/model"
)

const validReply = `{
  "predictions": {
    "pod_scheduling": {"probability": 15, "severity": "LOW", "root_cause": "cluster has headroom", "recommendations": ["none"]},
    "efs_mount": {"probability": 10, "severity": "LOW", "root_cause": "mount targets healthy", "recommendations": []},
    "memory_oomkill": {"probability": 70, "severity": "HIGH", "root_cause": "peak memory near the limit", "recommendations": ["raise the limit"]},
    "iam_permissions": {"probability": 5, "severity": "LOW", "root_cause": "policies attached", "recommendations": []},
    "data_quality": {"probability": 20, "severity": "MEDIUM", "root_cause": "duplicate partitions seen last week", "recommendations": ["dedupe upstream"]}
  },
  "overall_assessment": {
    "should_execute": false,
    "overall_severity": "HIGH",
    "overall_probability": 68,
    "recommendation": "raise the memory limit before the next run"
  },
  "estimated_effort": {
    "category": "MEDIUM",
    "story_points": 3,
    "estimated_hours": "4-8"
  }
}`

// TestExtractPayload covers the three reply shapes the model produces.
func TestExtractPayload(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "json fence",
			raw:  "Here is the analysis:\n```json\n{\"a\": 1}\n```\nDone.",
			want: `{"a": 1}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "naked payload",
			raw:  "  {\"a\": 1}\n",
			want: `{"a": 1}`,
		},
		{
			name: "unterminated fence",
			raw:  "```json\n{\"a\": 1}",
			want: `{"a": 1}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPayload(tc.raw))
		})
	}
}

// TestParseFenceRoundTrip verifies a fenced payload parses to the same
// result as the naked payload.
func TestParseFenceRoundTrip(t *testing.T) {
	naked, err := Parse(validReply)
	require.NoError(t, err)

	fenced, err := Parse("```json\n" + validReply + "\n```")
	require.NoError(t, err)

	assert.Equal(t, naked, fenced)
}

// TestParseBareReply verifies an unfenced reply parses and the decision
// matches the payload literal.
func TestParseBareReply(t *testing.T) {
	result, err := Parse(validReply)
	require.NoError(t, err)

	require.NotNil(t, result.OverallAssessment)
	assert.False(t, result.OverallAssessment.ShouldExecute)
	assert.Equal(t, model.SeverityHigh, result.OverallAssessment.OverallSeverity)
	assert.Equal(t, 68, result.OverallAssessment.OverallProbability)

	oom := result.Predictions.Get(model.CategoryMemoryOOMKill)
	require.NotNil(t, oom)
	assert.Equal(t, 70, oom.Probability)
}

// TestParseProbabilityOutOfRange verifies 101 is a schema violation,
// not a syntax error.
func TestParseProbabilityOutOfRange(t *testing.T) {
	reply := strings.Replace(validReply, `"probability": 70`, `"probability": 101`, 1)

	_, err := Parse(reply)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "101")

	var syntax *ParseSyntaxError
	assert.False(t, errors.As(err, &syntax))
}

// TestParseMissingCategory verifies a dropped category key is rejected.
func TestParseMissingCategory(t *testing.T) {
	reply := strings.Replace(validReply,
		`"data_quality": {"probability": 20, "severity": "MEDIUM", "root_cause": "duplicate partitions seen last week", "recommendations": ["dedupe upstream"]}`,
		`"data_quality": null`, 1)

	_, err := Parse(reply)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "data_quality")
}

// TestParseMissingEffort verifies a reply without estimated_effort is
// rejected outright instead of defaulted.
func TestParseMissingEffort(t *testing.T) {
	reply := strings.Replace(validReply,
		`"estimated_effort": {
    "category": "MEDIUM",
    "story_points": 3,
    "estimated_hours": "4-8"
  }`,
		`"estimated_effort": null`, 1)

	result, err := Parse(reply)

	assert.Nil(t, result)
	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "estimated_effort")
}

// TestParseInvalidSeverity verifies unknown severity strings are
// rejected.
func TestParseInvalidSeverity(t *testing.T) {
	reply := strings.Replace(validReply, `"severity": "HIGH"`, `"severity": "SEVERE"`, 1)

	_, err := Parse(reply)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "SEVERE")
}

// TestParseNonPositiveStoryPoints verifies zero story points fail the
// schema.
func TestParseNonPositiveStoryPoints(t *testing.T) {
	reply := strings.Replace(validReply, `"story_points": 3`, `"story_points": 0`, 1)

	_, err := Parse(reply)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "story points")
}

// TestParseNonJSON verifies a non-JSON reply is a syntax error carrying
// a bounded excerpt.
func TestParseNonJSON(t *testing.T) {
	raw := "I could not produce the analysis. " + strings.Repeat("sorry ", 200)

	_, err := Parse(raw)

	var syntax *ParseSyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.LessOrEqual(t, len(syntax.Excerpt), excerptLimit)
	assert.True(t, strings.HasPrefix(raw, syntax.Excerpt))

	var violation *SchemaViolation
	assert.False(t, errors.As(err, &violation))
}

// TestParseNonJSONMultibyte verifies the excerpt is cut on a rune
// boundary, not mid-sequence.
func TestParseNonJSONMultibyte(t *testing.T) {
	raw := "解析できませんでした。" + strings.Repeat("申し訳ありません。", 100)

	_, err := Parse(raw)

	var syntax *ParseSyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.True(t, utf8.ValidString(syntax.Excerpt))
	assert.Equal(t, excerptLimit, utf8.RuneCountInString(syntax.Excerpt))
	assert.True(t, strings.HasPrefix(raw, syntax.Excerpt))
}

// TestParseTypeMismatch verifies well-formed JSON with a wrong field
// type reports a schema violation, not a syntax error.
func TestParseTypeMismatch(t *testing.T) {
	reply := strings.Replace(validReply, `"should_execute": false`, `"should_execute": "no"`, 1)

	_, err := Parse(reply)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
}
