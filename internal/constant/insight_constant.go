package constant

import "time"

// Insight categories. These mirror the extraction prompt: the model may only
// tag an insight with one of these nine values.
const (
	InsightCategoryProject    = "project"
	InsightCategoryRole       = "role"
	InsightCategoryChallenge  = "challenge"
	InsightCategoryGoal       = "goal"
	InsightCategoryPreference = "preference"
	InsightCategoryExperience = "experience"
	InsightCategorySkill      = "skill"
	InsightCategoryContext    = "context"
	InsightCategoryDeadline   = "deadline"
)

// InsightCategories is the closed set of accepted category values.
var InsightCategories = map[string]bool{
	InsightCategoryProject:    true,
	InsightCategoryRole:       true,
	InsightCategoryChallenge:  true,
	InsightCategoryGoal:       true,
	InsightCategoryPreference: true,
	InsightCategoryExperience: true,
	InsightCategorySkill:      true,
	InsightCategoryContext:    true,
	InsightCategoryDeadline:   true,
}

// Confidence levels attached by the extractor.
const (
	InsightConfidenceHigh   = "high"
	InsightConfidenceMedium = "medium"
	InsightConfidenceLow    = "low"
)

// Similarity thresholds. Two independent families share this block on purpose:
// DUPLICATE/MERGE drive write-time novelty decisions, HIGH/MEDIUM drive
// read-time relevance tiering. Keep both here so they cannot drift apart.
const (
	// Write-time (novelty check)
	SimilarityDuplicateThreshold = 0.92
	SimilarityMergeThreshold     = 0.80
	// Search radius when looking for merge candidates
	SimilarityNoveltyCheckRadius = 0.75

	// Read-time (relevance tiering)
	SimilarityHighRelevance   = 0.70
	SimilarityMediumRelevance = 0.50
)

// NoveltySearchLimit bounds how many stored insights the novelty check pulls
// back. Only the top hit is ever acted on; the rest are diagnostics.
const NoveltySearchLimit = 5

// RelevanceTopK is the overall cutoff for the low tier: insights below every
// similarity threshold are still injected (low tier) when they rank inside the
// top K by similarity, and omitted entirely otherwise.
const RelevanceTopK = 5

// DeadlineInsightTTL is how long a deadline-category insight stays retrievable
// before the expiry sweeper removes it. Other categories never expire.
const DeadlineInsightTTL = 30 * 24 * time.Hour

// Novelty check actions.
const (
	NoveltyActionSave  = "save"
	NoveltyActionMerge = "merge"
	NoveltyActionSkip  = "skip"
)

// Merge engine verdicts.
const (
	MergeActionMerge   = "merge"
	MergeActionSkip    = "skip"
	MergeActionReplace = "replace"
)

// Pending insight statuses (manual-approval mode).
const (
	PendingStatusPending  = "pending"
	PendingStatusSaved    = "saved"
	PendingStatusDeclined = "declined"
)

// MergeVerdictPromptV1 asks the model for a compact JSON verdict when a
// candidate insight lands in the merge band [0.80, 0.92). Similarity alone
// cannot tell an update ("manages a team of 12") from a duplicate
// ("manages a team of 5"), so the call is delegated.
//
// Expected reply: {"action":"merge|skip|replace","merged_content":"..."}
const MergeVerdictPromptV1 = `Two facts about the same user overlap. Decide how to reconcile them.

EXISTING (stored earlier):
%s

CANDIDATE (just extracted):
%s

Rules:
- "skip"    → candidate adds nothing; keep the existing fact as-is
- "replace" → candidate supersedes the existing fact (an update, e.g. a number or status changed)
- "merge"   → both carry information; combine them into one sentence

Respond with ONLY compact JSON, no prose:
{"action":"merge|skip|replace","merged_content":"<required for merge, omit otherwise>"}`
