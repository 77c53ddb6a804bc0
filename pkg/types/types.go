package types

import (
	"encoding/base64"
	"time"
)

// =============== candidate TYPES ===============

// JobCandidate is a single listing pulled off a search-results page.
// Index is the card's position in page order; it doubles as the opaque
// handle a front end can use to decorate the matching card. Candidates are
// never persisted directly, only derived JobRecords are.
type JobCandidate struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location,omitempty"`
	Posted   string `json:"posted,omitempty"`
	Link     string `json:"link"`
	Source   string `json:"source,omitempty"`
}

type QuickFilterResult struct {
	Pass   bool   `json:"pass"`
	Reason string `json:"reason"`
}

// SkippedCandidate pairs a filtered-out candidate with the reason it failed.
type SkippedCandidate struct {
	Candidate JobCandidate `json:"candidate"`
	Reason    string       `json:"reason"`
}

// =============== scoring TYPES ===============

// FitAnalysis is the structured result of one scoring call.
// FitScore is 1 (poor fit) to 5 (excellent fit).
type FitAnalysis struct {
	FitScore       int      `json:"fitScore"`
	Reasoning      string   `json:"reasoning"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Disqualifiers  []string `json:"disqualifiers,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// RoleSummary is the structured role digest, independent of FitAnalysis;
// a record may hold either or both.
type RoleSummary struct {
	YearsRequired      string   `json:"yearsRequired"`
	ManagerType        string   `json:"managerType"`
	Function           string   `json:"function"`
	UniqueRequirements []string `json:"uniqueRequirements"`
}

// ScoredJob is one candidate after the scoring loop settled on it.
// Score 0 means the call failed and Error holds the reason.
type ScoredJob struct {
	Candidate JobCandidate `json:"candidate"`
	Score     int          `json:"score"`
	Analysis  *FitAnalysis `json:"analysis,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// ScanSummary aggregates a finished (or cancelled) scan into score buckets.
type ScanSummary struct {
	HighFit   []ScoredJob `json:"highFit"`   // score >= 4
	MediumFit []ScoredJob `json:"mediumFit"` // score == 3
	LowFit    []ScoredJob `json:"lowFit"`    // score 1-2
	Errors    []ScoredJob `json:"errors"`    // score == 0
	Cancelled bool        `json:"cancelled,omitempty"`
}

func (s ScanSummary) Total() int {
	return len(s.HighFit) + len(s.MediumFit) + len(s.LowFit) + len(s.Errors)
}

// ProgressEvent is emitted before each scoring call.
type ProgressEvent struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Title   string `json:"title"`
}

// =============== history TYPES ===============

type JobStatus string

const (
	StatusScanned    JobStatus = "scanned"
	StatusInterested JobStatus = "interested"
	StatusApplied    JobStatus = "applied"
	StatusRejected   JobStatus = "rejected"
	StatusInterview  JobStatus = "interview"
)

// ValidStatus reports whether s is one of the known status labels.
// Statuses are plain labels, not a transition graph; any may follow any.
func ValidStatus(s JobStatus) bool {
	switch s {
	case StatusScanned, StatusInterested, StatusApplied, StatusRejected, StatusInterview:
		return true
	}
	return false
}

// JobRecord is the persisted unit of the history store, keyed by ID.
type JobRecord struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Company      string       `json:"company"`
	Location     string       `json:"location,omitempty"`
	Link         string       `json:"link"`
	Score        *int         `json:"score,omitempty"`
	Analysis     *FitAnalysis `json:"analysis,omitempty"`
	Summary      *RoleSummary `json:"summary,omitempty"`
	Status       JobStatus    `json:"status"`
	ScannedAt    time.Time    `json:"scannedAt"`
	AppliedAt    *time.Time   `json:"appliedAt,omitempty"`
	InterestedAt *time.Time   `json:"interestedAt,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Source       string       `json:"source,omitempty"`
}

// Fingerprint derives the dedupe key for a job: base64 of
// "title|company|link", truncated to 32 characters. Identical triples always
// produce the same id.
func Fingerprint(title, company, link string) string {
	id := base64.StdEncoding.EncodeToString([]byte(title + "|" + company + "|" + link))
	if len(id) > 32 {
		id = id[:32]
	}
	return id
}

// SkillToLearn is a gap skill the user saved for later, keyed
// case-insensitively by name.
type SkillToLearn struct {
	Skill     string    `json:"skill"`
	Resources string    `json:"resources,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	SavedAt   time.Time `json:"savedAt"`
	Learned   bool      `json:"learned"`
}

// =============== profile TYPES ===============

// RichSkill carries the context needed for real matching, not just a name.
type RichSkill struct {
	Skill   string  `json:"skill" yaml:"skill"`
	Context string  `json:"context,omitempty" yaml:"context,omitempty"`
	Years   float64 `json:"years,omitempty" yaml:"years,omitempty"`
}

type ExperienceEntry struct {
	Title      string   `json:"title" yaml:"title"`
	Company    string   `json:"company" yaml:"company"`
	Years      float64  `json:"years,omitempty" yaml:"years,omitempty"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

type Education struct {
	HighestDegree string   `json:"highestDegree" yaml:"highestDegree"`
	Field         string   `json:"field,omitempty" yaml:"field,omitempty"`
	Schools       []string `json:"schools,omitempty" yaml:"schools,omitempty"`
}

// ProfileFilters are the disqualifiers the analysis step derives from the
// resume itself, as opposed to HardFilters which the user sets by hand.
type ProfileFilters struct {
	MaxYearsRequired    int      `json:"maxYearsRequired" yaml:"maxYearsRequired"`
	ExcludeTitles       []string `json:"excludeTitles,omitempty" yaml:"excludeTitles,omitempty"`
	ExcludeRequirements []string `json:"excludeRequirements,omitempty" yaml:"excludeRequirements,omitempty"`
}

// CandidateProfile is the structured resume summary produced by the analysis
// call. The quick filter treats it as read-only input.
type CandidateProfile struct {
	AnalyzedAt      time.Time         `json:"analyzedAt" yaml:"analyzedAt"`
	YearsExperience string            `json:"yearsExperience" yaml:"yearsExperience"`
	SeniorityLevel  string            `json:"seniorityLevel" yaml:"seniorityLevel"`
	Education       Education         `json:"education" yaml:"education"`
	Experience      []ExperienceEntry `json:"experience,omitempty" yaml:"experience,omitempty"`
	Functions       []string          `json:"functions,omitempty" yaml:"functions,omitempty"`
	Industries      []string          `json:"industries,omitempty" yaml:"industries,omitempty"`
	HardSkills      []RichSkill       `json:"hardSkills,omitempty" yaml:"hardSkills,omitempty"`
	SoftSkills      []string          `json:"softSkills,omitempty" yaml:"softSkills,omitempty"`
	Certifications  []string          `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	TopAchievements []string          `json:"topAchievements,omitempty" yaml:"topAchievements,omitempty"`
	TargetTitles    []string          `json:"targetTitles,omitempty" yaml:"targetTitles,omitempty"`
	SearchQueries   []string          `json:"searchQueries,omitempty" yaml:"searchQueries,omitempty"`
	Keywords        []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	HardFilters     ProfileFilters    `json:"hardFilters" yaml:"hardFilters"`
}

// HardFilters are the user-set knockout rules applied before any scoring.
type HardFilters struct {
	FilterYearsEnabled bool     `json:"filterYearsEnabled" yaml:"filterYearsEnabled"`
	MaxYearsRequired   int      `json:"maxYearsRequired" yaml:"maxYearsRequired"`
	SkipPhD            bool     `json:"skipPhD" yaml:"skipPhD"`
	SkipDirectorPlus   bool     `json:"skipDirectorPlus" yaml:"skipDirectorPlus"`
	SkipCertifications []string `json:"skipCertifications,omitempty" yaml:"skipCertifications,omitempty"`
	ExcludeCompanies   []string `json:"excludeCompanies,omitempty" yaml:"excludeCompanies,omitempty"`
}
