// FILE: pkg/stream/codec.go
// PURPOSE: Side-channel metadata codec for the streamed chat wire format

package stream

import (
	"encoding/json"
	"regexp"
	"strings"

	"ai-academy-be/internal/constant"
	"ai-academy-be/pkg/insight"
)

// Sentinel markers delimiting the structured metadata suffix. HTML-comment
// style with an embedded token so they cannot occur in natural model prose.
const (
	MetadataStartMarker = "<!--AIACADEMY:METADATA:START-->"
	MetadataEndMarker   = "<!--AIACADEMY:METADATA:END-->"
)

// FollowUpSuggestion is a prompt the client may offer as a quick reply.
type FollowUpSuggestion struct {
	Prompt           string `json:"prompt"`
	RelatedInsightId string `json:"relatedInsightId,omitempty"`
	Category         string `json:"category,omitempty"`
}

// Metadata is the structured block smuggled at the tail of a streamed
// response.
type Metadata struct {
	PendingInsights     []insight.ExtractedInsight `json:"pendingInsights"`
	AutoSavedCount      int                        `json:"autoSavedCount"`
	IsAutoMode          bool                       `json:"isAutoMode"`
	FollowUpSuggestions []FollowUpSuggestion       `json:"followUpSuggestions"`
}

// DecodeResult is the consumer-side view of a full stream.
type DecodeResult struct {
	// Content is the user-visible text: metadata removed, insight tags
	// stripped, whitespace normalized.
	Content string
	// RawContent keeps the inline tags intact for audit and storage.
	RawContent string
	// Metadata is nil when the stream carried no (parsable) metadata block.
	Metadata *Metadata
	// Truncated is set when the start marker appeared without its end
	// marker, meaning the stream was cut mid-metadata. Insight extraction
	// must not run on a truncated stream.
	Truncated bool
}

// Inline insight tag grammars. Three accepted shapes:
//
//	<insight category="goal" confidence="high">text</insight>  (attributed)
//	<insight>text</insight>                                    (bare)
//	[[INSIGHT: type|content]]                                  (legacy pipe)
var (
	insightTagPattern = regexp.MustCompile(`(?s)<insight\b([^>]*)>(.*?)</insight>`)
	legacyTagPattern  = regexp.MustCompile(`\[\[INSIGHT:\s*([a-zA-Z]+)\s*\|([^\]]*)\]\]`)

	categoryAttrPattern   = regexp.MustCompile(`category="([^"]*)"`)
	confidenceAttrPattern = regexp.MustCompile(`confidence="([^"]*)"`)

	excessNewlinePattern = regexp.MustCompile(`\n{3,}`)
)

// Encode serializes a metadata block into the sentinel-delimited suffix
// appended to the stream. The production generator emits the same format; this
// side exists for internal producers and round-trip testing.
func Encode(m *Metadata) string {
	if m == nil {
		return ""
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return MetadataStartMarker + string(data) + MetadataEndMarker
}

// Decode splits a fully accumulated stream into clean text plus structured
// metadata. It never fails: a missing or malformed metadata block degrades to
// Metadata == nil with the prose preserved.
func Decode(full string) *DecodeResult {
	result := &DecodeResult{}

	prose := full
	start := strings.LastIndex(full, MetadataStartMarker)
	end := strings.LastIndex(full, MetadataEndMarker)

	switch {
	case start >= 0 && end > start:
		payload := full[start+len(MetadataStartMarker) : end]
		var meta Metadata
		if err := json.Unmarshal([]byte(payload), &meta); err == nil {
			result.Metadata = &meta
			prose = full[:start]
		}
		// Unparsable payload: metadata stays nil, prose stays the full
		// text. The caller decides whether sentinel debris is shown.
	case start >= 0:
		// Start marker without end marker: the stream died mid-metadata.
		result.Truncated = true
		prose = full[:start]
	}

	result.RawContent = strings.TrimSpace(prose)
	result.Content = StripTags(prose)
	return result
}

// StripTags removes all three inline tag grammars from text for user display.
// Attributed and bare tags unwrap to their inner text; the legacy pipe form is
// deleted outright since its body is extraction payload, not prose. Collapses
// runs of 3+ newlines to exactly 2. Idempotent.
func StripTags(text string) string {
	text = insightTagPattern.ReplaceAllString(text, "$2")
	text = legacyTagPattern.ReplaceAllString(text, "")
	text = excessNewlinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ExtractInsights parses every inline tag in the raw text into candidate
// insights. Unknown categories degrade to "context"; unknown confidences to
// "low". A tag with an empty body is ignored.
func ExtractInsights(raw, sourceAgent, conversationId string) []insight.ExtractedInsight {
	var out []insight.ExtractedInsight

	for _, match := range insightTagPattern.FindAllStringSubmatch(raw, -1) {
		attrs, body := match[1], strings.TrimSpace(match[2])
		if body == "" {
			continue
		}
		category := constant.InsightCategoryContext
		confidence := constant.InsightConfidenceLow
		if m := categoryAttrPattern.FindStringSubmatch(attrs); m != nil {
			category = normalizeCategory(m[1])
		}
		if m := confidenceAttrPattern.FindStringSubmatch(attrs); m != nil {
			confidence = normalizeConfidence(m[1])
		}
		out = append(out, insight.ExtractedInsight{
			Category:             category,
			Content:              body,
			Confidence:           confidence,
			SourceAgent:          sourceAgent,
			SourceConversationId: conversationId,
		})
	}

	for _, match := range legacyTagPattern.FindAllStringSubmatch(raw, -1) {
		body := strings.TrimSpace(match[2])
		if body == "" {
			continue
		}
		out = append(out, insight.ExtractedInsight{
			Category:             normalizeCategory(match[1]),
			Content:              body,
			Confidence:           constant.InsightConfidenceMedium,
			SourceAgent:          sourceAgent,
			SourceConversationId: conversationId,
		})
	}

	return out
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if constant.InsightCategories[category] {
		return category
	}
	return constant.InsightCategoryContext
}

func normalizeConfidence(confidence string) string {
	switch strings.ToLower(strings.TrimSpace(confidence)) {
	case constant.InsightConfidenceHigh:
		return constant.InsightConfidenceHigh
	case constant.InsightConfidenceMedium:
		return constant.InsightConfidenceMedium
	default:
		return constant.InsightConfidenceLow
	}
}
