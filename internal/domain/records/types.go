package records

// AnalysisKind indica el origen de un análisis de comportamiento.
type AnalysisKind string

const (
	AnalysisText  AnalysisKind = "text"
	AnalysisAudio AnalysisKind = "audio"
	AnalysisVideo AnalysisKind = "video"
)

func (k AnalysisKind) valid() bool {
	switch k {
	case AnalysisText, AnalysisAudio, AnalysisVideo:
		return true
	default:
		return false
	}
}
