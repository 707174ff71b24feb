package util

// Progress for an analysis run is staged: 0-50 covers batch submission and
// the analyzer's own processing, 50-90 covers result storage, and the last
// stretch to 100 is summary generation. The stage boundaries are constants
// here so the orchestrator and its tests agree on them.
const (
	SubmissionProgressCeil = 50.0
	StorageProgressSpan    = 40.0
	ProgressDone           = 100.0
)

// ClampProgress bounds p to [0, 100].
func ClampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > ProgressDone {
		return ProgressDone
	}
	return p
}

// SubmissionProgress maps the analyzer's reported batch progress (0-100)
// into the submission stage of the run.
func SubmissionProgress(analyzerProgress float64) float64 {
	return ClampProgress(analyzerProgress) * SubmissionProgressCeil / 100.0
}

// StorageProgress maps stored-result counts into the storage stage of the
// run: 50 + (stored/total)*40.
func StorageProgress(stored, total int) float64 {
	if total <= 0 {
		return SubmissionProgressCeil
	}
	if stored > total {
		stored = total
	}
	return SubmissionProgressCeil + float64(stored)/float64(total)*StorageProgressSpan
}
