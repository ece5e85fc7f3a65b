package watcher

// ChangeAnalysis describes what changed and what a re-run has to reload
type ChangeAnalysis struct {
	ReloadConfig  bool
	ReloadNetwork bool
	Reason        string
	ChangedFiles  []string
}

// Reasons reported with re-analysis runs.
const (
	ReasonNetworkChanged = "network_changed"
	ReasonConfigChanged  = "config_changed"
)

// AnalyzeChanges determines what needs to be reloaded for a change event
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles:  event.Paths,
		ReloadNetwork: true,
	}

	switch event.Type {
	case ChangeTypeConfig:
		// The input path, source or formula may have changed too
		analysis.ReloadConfig = true
		analysis.Reason = ReasonConfigChanged
	default:
		analysis.Reason = ReasonNetworkChanged
	}

	return analysis
}
