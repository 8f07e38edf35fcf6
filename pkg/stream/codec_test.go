package stream

import (
	"testing"

	"ai-academy-be/internal/constant"
	"ai-academy-be/pkg/insight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	meta := &Metadata{
		PendingInsights: []insight.ExtractedInsight{
			{Category: "goal", Content: "wants to finish the course by June", Confidence: "high"},
		},
		AutoSavedCount: 2,
		IsAutoMode:     true,
		FollowUpSuggestions: []FollowUpSuggestion{
			{Prompt: "Want a study plan for June?", Category: "goal"},
		},
	}

	full := "Here is my answer.\n" + Encode(meta)
	result := Decode(full)

	require.NotNil(t, result.Metadata)
	assert.Equal(t, "Here is my answer.", result.Content)
	assert.False(t, result.Truncated)
	assert.Equal(t, meta.AutoSavedCount, result.Metadata.AutoSavedCount)
	assert.Equal(t, meta.IsAutoMode, result.Metadata.IsAutoMode)
	require.Len(t, result.Metadata.PendingInsights, 1)
	assert.Equal(t, "goal", result.Metadata.PendingInsights[0].Category)
	require.Len(t, result.Metadata.FollowUpSuggestions, 1)
}

func TestEncodeNil(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
}

func TestDecodeWithoutMarkers(t *testing.T) {
	result := Decode("Plain answer, nothing else.")
	assert.Nil(t, result.Metadata)
	assert.False(t, result.Truncated)
	assert.Equal(t, "Plain answer, nothing else.", result.Content)
}

func TestDecodeMalformedMetadataDegrades(t *testing.T) {
	full := "Some prose.\n" + MetadataStartMarker + `{"broken":` + MetadataEndMarker

	result := Decode(full)
	assert.Nil(t, result.Metadata)
	assert.False(t, result.Truncated)
	// The prose survives even though the block was unparsable.
	assert.Contains(t, result.Content, "Some prose.")
}

func TestDecodeTruncatedStream(t *testing.T) {
	full := "The answer is 42.\n" + MetadataStartMarker + `{"pendingInsights":[{"cat`

	result := Decode(full)
	assert.True(t, result.Truncated)
	assert.Nil(t, result.Metadata)
	assert.Equal(t, "The answer is 42.", result.Content)
}

func TestDecodeUsesLastMarkerPair(t *testing.T) {
	// A model quoting the markers in prose must not confuse the decoder:
	// only the last pair counts.
	full := "I end replies with " + MetadataStartMarker + " markers.\n" +
		MetadataStartMarker + `{"autoSavedCount":1,"isAutoMode":true,"pendingInsights":null,"followUpSuggestions":null}` + MetadataEndMarker

	result := Decode(full)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, 1, result.Metadata.AutoSavedCount)
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "attributed tag unwraps to inner text",
			in:   `You said <insight category="role" confidence="high">you manage a team</insight> earlier.`,
			want: "You said you manage a team earlier.",
		},
		{
			name: "bare tag unwraps to inner text",
			in:   "Noted: <insight>prefers dark mode</insight>.",
			want: "Noted: prefers dark mode.",
		},
		{
			name: "legacy pipe form is deleted",
			in:   "Great progress! [[INSIGHT: goal|finish course by June]] Keep going.",
			want: "Great progress!  Keep going.",
		},
		{
			name: "multiline tag body",
			in:   "A <insight category=\"context\">spans\ntwo lines</insight> B",
			want: "A spans\ntwo lines B",
		},
		{
			name: "excess newlines collapse to two",
			in:   "First.\n\n\n\n\nSecond.",
			want: "First.\n\nSecond.",
		},
		{
			name: "untagged text unchanged",
			in:   "Nothing to strip here.",
			want: "Nothing to strip here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestStripTagsIdempotent(t *testing.T) {
	in := `Mixed <insight category="skill" confidence="medium">knows Go</insight> and [[INSIGHT: goal|ship v2]] tags.` +
		"\n\n\n\nTail."

	once := StripTags(in)
	twice := StripTags(once)
	assert.Equal(t, once, twice)
}

func TestExtractInsights(t *testing.T) {
	raw := `Good question! <insight category="role" confidence="high">leads the data team</insight>` +
		` And also <insight category="mystery" confidence="certain">unknown attrs</insight>` +
		` plus <insight></insight>` +
		` and [[INSIGHT: deadline|exam on Friday]]`

	got := ExtractInsights(raw, "academy-chat", "b9e6f3e1-6f7a-4af0-9e7a-111111111111")
	require.Len(t, got, 3)

	assert.Equal(t, constant.InsightCategoryRole, got[0].Category)
	assert.Equal(t, constant.InsightConfidenceHigh, got[0].Confidence)
	assert.Equal(t, "leads the data team", got[0].Content)
	assert.Equal(t, "academy-chat", got[0].SourceAgent)

	// Unknown category and confidence degrade instead of dropping the tag.
	assert.Equal(t, constant.InsightCategoryContext, got[1].Category)
	assert.Equal(t, constant.InsightConfidenceLow, got[1].Confidence)

	// Legacy form keeps its type and gets a medium default confidence.
	assert.Equal(t, constant.InsightCategoryDeadline, got[2].Category)
	assert.Equal(t, constant.InsightConfidenceMedium, got[2].Confidence)
	assert.Equal(t, "exam on Friday", got[2].Content)
}

func TestExtractInsightsNone(t *testing.T) {
	assert.Empty(t, ExtractInsights("No tags at all.", "agent", ""))
}
