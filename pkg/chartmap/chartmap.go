// Package chartmap translates between pixel coordinates on a rendered widget
// and domain coordinates (month offsets and 1-based period indices).
package chartmap

import (
	"math"

	"github.com/iwvelando/mortgage-planner/pkg/mathutil"
)

// MonthAt converts a pixel offset on a timeline widget of the given width into
// a month offset on [0, termMonths]. The mapping is proportional, rounded to
// the nearest whole month, and clamped to the horizon.
func MonthAt(pixelX, width float64, termMonths int) int {
	if width <= 0 || termMonths <= 0 {
		return 0
	}
	month := int(math.Round(pixelX / width * float64(termMonths)))
	return mathutil.ClampInt(month, 0, termMonths)
}

// PixelAt converts a month offset into its pixel position on a timeline widget
// of the given width.
func PixelAt(month int, width float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	return float64(month) / float64(termMonths) * width
}

// Scale maps pixel positions on a balance chart to 1-based period indices.
// OriginX is the pixel position of period 1 and PixelsPerMonth is the chart's
// horizontal resolution.
type Scale struct {
	OriginX        float64
	PixelsPerMonth float64
	MaxPeriod      int
}

// PeriodAt converts a pixel position into a period index, rounded to the
// nearest period and clamped to [1, MaxPeriod].
func (s Scale) PeriodAt(pixelX float64) int {
	if s.PixelsPerMonth <= 0 || s.MaxPeriod < 1 {
		return 1
	}
	period := int(math.Round((pixelX-s.OriginX)/s.PixelsPerMonth)) + 1
	return mathutil.ClampInt(period, 1, s.MaxPeriod)
}

// PixelFor returns the pixel position of a 1-based period index.
func (s Scale) PixelFor(periodIndex int) float64 {
	return s.OriginX + float64(periodIndex-1)*s.PixelsPerMonth
}

// WithinThreshold reports whether two pixel positions are within the given
// hit-test radius of each other.
func WithinThreshold(pixelA, pixelB, threshold float64) bool {
	return math.Abs(pixelA-pixelB) <= threshold
}
