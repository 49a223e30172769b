package presence

import "math"

var (
	opacityLevels = []string{"opacity-70", "opacity-80", "opacity-90", "opacity-100"}
	shadowLevels  = []string{"shadow-2", "shadow-4", "shadow-7", "shadow-10"}
)

const (
	FallbackOpacity = "opacity-60"
	FallbackShadow  = "shadow-none"
)

// ScoreClasses is the visual emphasis of a presence record.
type ScoreClasses struct {
	Opacity string `json:"opacity"`
	Shadow  string `json:"shadow"`
	Pulse   bool   `json:"pulse"`
}

// BucketIndex maps score onto one of n buckets as round(score*n - 1),
// rounding halves up. ok is false when score lies outside [0,1].
// Inside the range the index is clamped to [0, n-1].
func BucketIndex(score float64, n int) (idx int, ok bool) {
	if n <= 0 || math.IsNaN(score) || score < 0 || score > 1 {
		return 0, false
	}
	idx = int(math.Floor(score*float64(n) - 1 + 0.5))
	return max(0, min(n-1, idx)), true
}

func ClassesFor(score float64) ScoreClasses {
	classes := ScoreClasses{
		Opacity: FallbackOpacity,
		Shadow:  FallbackShadow,
		Pulse:   score == 1,
	}
	if i, ok := BucketIndex(score, len(opacityLevels)); ok {
		classes.Opacity = opacityLevels[i]
	}
	if i, ok := BucketIndex(score, len(shadowLevels)); ok {
		classes.Shadow = shadowLevels[i]
	}
	return classes
}
