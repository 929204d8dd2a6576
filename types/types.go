package types

import "errors"

// Sentinel errors for the failure modes callers branch on with errors.Is.
var (
	// ErrChapterNotFound means the requested chapter text file does not exist.
	ErrChapterNotFound = errors.New("chapter file not found")

	// ErrMissingBasePrompt means a chapter has no base prompt file; image
	// generation requires one, audio generation does not.
	ErrMissingBasePrompt = errors.New("base prompt file not found")

	// ErrNoMatchingMedia means directory pairing produced zero audio/image pairs.
	ErrNoMatchingMedia = errors.New("no matching audio-image pairs found")

	// ErrEmptyTimeline means an encode was requested with zero clips.
	ErrEmptyTimeline = errors.New("timeline has no clips")

	// ErrLengthMismatch means the image and audio path lists differ in length.
	ErrLengthMismatch = errors.New("image and audio lists differ in length")
)

// Pair is one audio file and the image file sharing its stem.
type Pair struct {
	Audio string `json:"audio"`
	Image string `json:"image"`
}

// Clip is an intermediate per-pair video file: the still image held for
// exactly the audio's duration, with the audio as its soundtrack. Clips only
// exist inside a run's scratch directory until they are concatenated.
type Clip struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
}

// Timeline is the ordered clip sequence destined for one encoded output file.
type Timeline struct {
	Clips []Clip `json:"clips"`
}

// TotalSec is the summed duration of all clips.
func (t Timeline) TotalSec() float64 {
	var total float64
	for _, c := range t.Clips {
		total += c.DurationSec
	}
	return total
}
