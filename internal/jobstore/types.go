package jobstore

import "time"

// FieldID is one of the closed set of Job Draft field ids (spec §3).
type FieldID string

const (
	FieldRoleTitle      FieldID = "roleTitle"
	FieldCompanyName    FieldID = "companyName"
	FieldLogoURL        FieldID = "logoUrl"
	FieldLocation       FieldID = "location"
	FieldZipCode        FieldID = "zipCode"
	FieldIndustry       FieldID = "industry"
	FieldSeniorityLevel FieldID = "seniorityLevel"
	FieldEmploymentType FieldID = "employmentType"
	FieldWorkModel      FieldID = "workModel"
	FieldJobDescription FieldID = "jobDescription"
	FieldSalary         FieldID = "salary"
	FieldSalaryPeriod   FieldID = "salaryPeriod"
	FieldCurrency       FieldID = "currency"
	FieldCoreDuties     FieldID = "coreDuties"
	FieldMustHaves      FieldID = "mustHaves"
	FieldBenefits       FieldID = "benefits"
)

// scalarFields and listFields partition the closed field-id set.
var scalarFields = map[FieldID]bool{
	FieldRoleTitle: true, FieldCompanyName: true, FieldLogoURL: true,
	FieldLocation: true, FieldZipCode: true, FieldIndustry: true,
	FieldSeniorityLevel: true, FieldEmploymentType: true, FieldWorkModel: true,
	FieldJobDescription: true, FieldSalary: true, FieldSalaryPeriod: true,
	FieldCurrency: true,
}

var listFields = map[FieldID]bool{
	FieldCoreDuties: true, FieldMustHaves: true, FieldBenefits: true,
}

// RequiredForRefine is the required field set for a "complete enough to
// refine" draft (spec §3).
var RequiredForRefine = []FieldID{
	FieldRoleTitle, FieldCompanyName, FieldLocation,
	FieldSeniorityLevel, FieldEmploymentType, FieldJobDescription,
}

// Draft is the canonical bag of job-posting fields. Scalars live in
// Scalars; the three list fields live in Lists.
type Draft struct {
	Scalars map[FieldID]string
	Lists   map[FieldID][]string
}

// NewDraft returns an empty, non-nil Draft.
func NewDraft() Draft {
	return Draft{Scalars: map[FieldID]string{}, Lists: map[FieldID][]string{}}
}

// FinalizationSource is the chosen authoritative variant at finalize time.
type FinalizationSource string

const (
	SourceOriginal FinalizationSource = "original"
	SourceRefined  FinalizationSource = "refined"
	SourceEdited   FinalizationSource = "edited"
)

// Finalization records which draft variant downstream distribution uses.
type Finalization struct {
	Source      FinalizationSource
	FinalizedAt time.Time
}

// RefinementMetadata is the refine task's improvement analysis.
type RefinementMetadata struct {
	ImprovementScore int
	OriginalScore    int
	ImpactSummary    string
	KeyImprovements  []string
}

// Failure mirrors task.ParseError/orchestrator.Failure for persistence.
type Failure struct {
	Reason     string
	Message    string
	RawPreview string
}

// ChannelRecommendation is one persisted channel recommendation row.
type ChannelRecommendation struct {
	Channel     string
	Reason      string
	ExpectedCPA *float64
}

// AssetStatus is a single asset's lifecycle state (spec §3 Lifecycles).
type AssetStatus string

const (
	AssetPending    AssetStatus = "PENDING"
	AssetGenerating AssetStatus = "GENERATING"
	AssetReady      AssetStatus = "READY"
	AssetFailed     AssetStatus = "FAILED"
)

// terminalAssetStatus reports whether status cannot be overwritten except
// by an explicit new run (spec §4.F).
func terminalAssetStatus(s AssetStatus) bool {
	return s == AssetReady || s == AssetFailed
}

// AssetPlanRow is one (formatId, channelId) pair from the Asset
// Coordinator's static format-plan table.
type AssetPlanRow struct {
	FormatID  string
	ChannelID string
}

// Asset is one persisted creative artifact.
type Asset struct {
	AssetID   string
	FormatID  string
	ChannelID string
	Status    AssetStatus
	Content   map[string]any
	LogoURL   string
	UpdatedAt time.Time
}

// AssetRunStatus is the aggregate status of a job's current asset run.
type AssetRunStatus string

const (
	AssetRunPlanning   AssetRunStatus = "planning"
	AssetRunGenerating AssetRunStatus = "generating"
	AssetRunCompleted  AssetRunStatus = "completed"
	AssetRunFailed     AssetRunStatus = "failed"
)

// AssetRun is the job's aggregate asset-generation run state.
type AssetRun struct {
	Status         AssetRunStatus
	PlannedCount   int
	CompletedCount int
	Error          string
}

// MediaStatus is the hero-image/video lifecycle (spec §2 row I).
type MediaStatus string

const (
	MediaIdle       MediaStatus = "IDLE"
	MediaPrompting  MediaStatus = "PROMPTING"
	MediaGenerating MediaStatus = "GENERATING"
	MediaReady      MediaStatus = "READY"
	MediaFailed     MediaStatus = "FAILED"
)

// HeroImage is the job's single hero-image record.
type HeroImage struct {
	Status   MediaStatus
	Provider string
	Model    string
	ImageURL string
	Caption  string
	Hashtags []string
	Failure  string
}

// Video is the job's single video record.
type Video struct {
	Status          MediaStatus
	Provider        string
	Model           string
	VideoURL        string
	PosterURL       string
	DurationSeconds int
	Caption         string
	Failure         string
}

// CopilotMessage is one conversation turn (spec §3).
type CopilotMessage struct {
	ID              string
	Role            string
	Content         string
	ClientMessageID string
	FieldID         string
	Rationale       string
	Value           string
	Confidence      *float64
	Source          string
	CreatedAt       time.Time
}

// Job is the full per-job document (spec §3).
type Job struct {
	JobID                  string
	Draft                  Draft
	Refined                *Draft
	RefinementSummary      string
	RefinementMetadata     *RefinementMetadata
	RefinementFailure      *Failure
	Finalization           *Finalization
	ChannelRecommendations []ChannelRecommendation
	ChannelsUpdatedAt      time.Time
	ChannelsFailure        *Failure
	AssetRun               *AssetRun
	Assets                 []Asset
	HeroImage              *HeroImage
	Video                  *Video
	CopilotConversation    []CopilotMessage
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
