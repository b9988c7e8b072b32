package assessment

import "strings"

type CandidateID string

// Result is one recorded decision for one criterion at one step.
type Result struct {
	ID        string
	StepID    StepID
	Criterion Criterion
	Decision  Decision
}

// Candidate owns its results. Status is the overall status maintained upstream.
type Candidate struct {
	ID      CandidateID
	Status  CandidateStatus
	Results []Result
}

// CandidateStatus is the overall status of a candidate in a pool.
type CandidateStatus string

const (
	StatusDraft                    CandidateStatus = "DRAFT"
	StatusNewApplication           CandidateStatus = "NEW_APPLICATION"
	StatusApplicationReview        CandidateStatus = "APPLICATION_REVIEW"
	StatusScreenedIn               CandidateStatus = "SCREENED_IN"
	StatusUnderAssessment          CandidateStatus = "UNDER_ASSESSMENT"
	StatusScreenedOutApplication   CandidateStatus = "SCREENED_OUT_APPLICATION"
	StatusScreenedOutAssessment    CandidateStatus = "SCREENED_OUT_ASSESSMENT"
	StatusScreenedOutNotInterested CandidateStatus = "SCREENED_OUT_NOT_INTERESTED"
	StatusScreenedOutNotResponsive CandidateStatus = "SCREENED_OUT_NOT_RESPONSIVE"
	StatusRemoved                  CandidateStatus = "REMOVED"
	StatusQualifiedAvailable       CandidateStatus = "QUALIFIED_AVAILABLE"
	StatusQualifiedUnavailable     CandidateStatus = "QUALIFIED_UNAVAILABLE"
	StatusQualifiedWithdrew        CandidateStatus = "QUALIFIED_WITHDREW"
	StatusPlacedTentative          CandidateStatus = "PLACED_TENTATIVE"
	StatusPlacedCasual             CandidateStatus = "PLACED_CASUAL"
	StatusPlacedTerm               CandidateStatus = "PLACED_TERM"
	StatusPlacedIndeterminate      CandidateStatus = "PLACED_INDETERMINATE"
	StatusExpired                  CandidateStatus = "EXPIRED"
)

var (
	toAssessStatuses = []CandidateStatus{
		StatusNewApplication, StatusApplicationReview, StatusScreenedIn, StatusUnderAssessment,
	}
	disqualifiedStatuses = []CandidateStatus{
		StatusScreenedOutApplication, StatusScreenedOutAssessment,
		StatusScreenedOutNotInterested, StatusScreenedOutNotResponsive,
	}
	removedStatuses   = []CandidateStatus{StatusRemoved}
	qualifiedStatuses = []CandidateStatus{
		StatusQualifiedAvailable, StatusPlacedTentative, StatusPlacedCasual,
		StatusPlacedTerm, StatusPlacedIndeterminate,
	}
)

// NormalizeStatus upper-cases the status and turns dashes and spaces into underscores.
func NormalizeStatus(raw string) CandidateStatus {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.NewReplacer("-", "_", " ", "_").Replace(value)
	return CandidateStatus(value)
}

func (s CandidateStatus) in(set []CandidateStatus) bool {
	for _, status := range set {
		if s == status {
			return true
		}
	}
	return false
}

func (s CandidateStatus) IsToAssess() bool     { return s.in(toAssessStatuses) }
func (s CandidateStatus) IsDisqualified() bool { return s.in(disqualifiedStatuses) }
func (s CandidateStatus) IsRemoved() bool      { return s.in(removedStatuses) }
func (s CandidateStatus) IsQualified() bool    { return s.in(qualifiedStatuses) }
