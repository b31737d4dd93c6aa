package tracker

import "errors"

// Sentinel errors naming the tracker's failure classes. The public tracker
// operations report failure as bool/ok results and return none of these;
// only ErrRefreshFailed is produced internally, wrapped with %w around the
// representation's refresh error and logged.
var (
	// ErrNoRepresentation means no adaptation-policy recommendation and no
	// existing position could produce a starting representation.
	ErrNoRepresentation = errors.New("tracker: no representation available")
	// ErrNoSegment means the representation had no addressable data segment
	// at the requested number.
	ErrNoSegment = errors.New("tracker: no segment available")
	// ErrTranslationFailed means TranslateSegmentNumber could not resolve a
	// segment number in the candidate representation, even after a retry.
	ErrTranslationFailed = errors.New("tracker: segment number translation failed")
	// ErrTimeNotMapped means GetSegmentNumberByTime could not map a
	// playback time to a segment number.
	ErrTimeNotMapped = errors.New("tracker: time could not be mapped to a segment number")
	// ErrRefreshFailed means RunLocalUpdates returned an error while
	// refreshing a representation.
	ErrRefreshFailed = errors.New("tracker: representation refresh failed")
)
