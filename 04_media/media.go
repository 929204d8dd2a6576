package media

import (
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"chapter-video-pipeline/types"
)

// Segment is one (text, number) element of a natural sort key.
type Segment struct {
	Text   string
	Num    uint64
	HasNum bool
}

var segmentPattern = regexp.MustCompile(`([^0-9]*)([0-9]*)`)

// SortKey converts a string into a key that orders embedded numeric runs
// numerically, so "part2" sorts before "part10". Pure: the key depends only
// on the input string.
func SortKey(s string) []Segment {
	var key []Segment
	for _, m := range segmentPattern.FindAllStringSubmatch(s, -1) {
		text, digits := m[1], m[2]
		if text == "" && digits == "" {
			continue
		}
		seg := Segment{Text: text}
		if digits != "" {
			n, err := strconv.ParseUint(digits, 10, 64)
			if err != nil {
				// Digit run too long for uint64; fall back to text ordering.
				seg.Text += digits
			} else {
				seg.Num = n
				seg.HasNum = true
			}
		}
		key = append(key, seg)
	}
	return key
}

// KeyLess compares two sort keys lexicographically, text before number
// within each segment.
func KeyLess(a, b []Segment) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Text != b[i].Text {
			return a[i].Text < b[i].Text
		}
		an, bn := a[i].Num, b[i].Num
		if an != bn {
			return an < bn
		}
	}
	return len(a) < len(b)
}

// Stem returns the filename without directory or extension; stems are the
// join key for pairing audio and image files.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SortNatural sorts paths in place by the natural sort key of their stems.
func SortNatural(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return KeyLess(SortKey(Stem(paths[i])), SortKey(Stem(paths[j])))
	})
}

// FindPairs scans dir for *.mp3 and *.jpg files and pairs them by exact stem
// match. The result is ordered by the naturally-sorted audio list. Audio
// files without a matching image are warned about and skipped; zero pairs is
// not an error at this level.
func FindPairs(dir string) ([]types.Pair, error) {
	audioFiles, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return nil, err
	}
	imageFiles, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, err
	}

	SortNatural(audioFiles)
	SortNatural(imageFiles)

	imagesByStem := make(map[string]string, len(imageFiles))
	for _, img := range imageFiles {
		imagesByStem[Stem(img)] = img
	}

	var pairs []types.Pair
	for _, audio := range audioFiles {
		img, ok := imagesByStem[Stem(audio)]
		if !ok {
			log.Printf("[media] ⚠️  Warning: no matching image for %s", filepath.Base(audio))
			continue
		}
		pairs = append(pairs, types.Pair{Audio: audio, Image: img})
	}
	return pairs, nil
}
