package annotate

// Issue is a warning or error attached to a ChangeEffect.
type Issue uint8

const (
	WarnRefMismatch Issue = iota + 1
	WarnSequenceNotAvailable
	WarnNoStartCodon
	WarnNoStopCodon
	WarnMultipleStopCodons
	WarnIncompleteTranscript
	WarnCDSBoundsAdjusted
	ErrOutOfExon
	ErrMissingCDSSequence
)

// Tier classifies an issue.
type Tier uint8

const (
	TierWarning Tier = iota
	TierError
)

var issueNames = map[Issue]string{
	WarnRefMismatch:          "WARNING_REF_DOES_NOT_MATCH_GENOME",
	WarnSequenceNotAvailable: "WARNING_SEQUENCE_NOT_AVAILABLE",
	WarnNoStartCodon:         "WARNING_TRANSCRIPT_NO_START_CODON",
	WarnNoStopCodon:          "WARNING_TRANSCRIPT_NO_STOP_CODON",
	WarnMultipleStopCodons:   "WARNING_TRANSCRIPT_MULTIPLE_STOP_CODONS",
	WarnIncompleteTranscript: "WARNING_TRANSCRIPT_INCOMPLETE",
	WarnCDSBoundsAdjusted:    "WARNING_CDS_BOUNDS_ADJUSTED",
	ErrOutOfExon:             "ERROR_OUT_OF_EXON",
	ErrMissingCDSSequence:    "ERROR_MISSING_CDS_SEQUENCE",
}

// AllIssues returns every issue value.
func AllIssues() []Issue {
	out := make([]Issue, 0, len(issueNames))
	for i := WarnRefMismatch; i <= ErrMissingCDSSequence; i++ {
		out = append(out, i)
	}
	return out
}

// Tier returns whether the issue is a warning or an error.
func (i Issue) Tier() Tier {
	switch i {
	case ErrOutOfExon, ErrMissingCDSSequence:
		return TierError
	}
	return TierWarning
}

func (i Issue) String() string {
	if s, ok := issueNames[i]; ok {
		return s
	}
	return "UNKNOWN_ISSUE"
}

func (t Tier) String() string {
	if t == TierError {
		return "ERROR"
	}
	return "WARNING"
}
