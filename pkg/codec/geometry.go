package codec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// Property lists store geometry as bracketed strings: "{x,y}" for points and
// sizes and "{{x,y},{w,h}}" for rectangles. Tools emit fractional values now
// and then, so numbers are parsed as floats and rounded.
const number = `\s*([-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?)\s*`

var (
	pairPattern = regexp.MustCompile(`^\s*\{` + number + `,` + number + `\}\s*$`)
	rectPattern = regexp.MustCompile(`^\s*\{\s*\{` + number + `,` + number + `\}\s*,\s*\{` + number + `,` + number + `\}\s*\}\s*$`)
)

func atoi(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

func parsePair(s string) (int, int, error) {
	m := pairPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("malformed pair %q", s)
	}
	a, err := atoi(m[1])
	if err != nil {
		return 0, 0, err
	}
	b, err := atoi(m[2])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// ParsePoint decodes "{x,y}".
func ParsePoint(s string) (sheet.Point, error) {
	x, y, err := parsePair(s)
	return sheet.Point{X: x, Y: y}, err
}

// ParseSize decodes "{w,h}".
func ParseSize(s string) (sheet.Size, error) {
	w, h, err := parsePair(s)
	return sheet.Size{W: w, H: h}, err
}

// ParseRect decodes "{{x,y},{w,h}}".
func ParseRect(s string) (sheet.Rect, error) {
	m := rectPattern.FindStringSubmatch(s)
	if m == nil {
		return sheet.Rect{}, fmt.Errorf("malformed rect %q", s)
	}
	var v [4]int
	for i := range v {
		n, err := atoi(m[i+1])
		if err != nil {
			return sheet.Rect{}, err
		}
		v[i] = n
	}
	return sheet.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

// FormatSize encodes s as "{w,h}".
func FormatSize(s sheet.Size) string {
	return fmt.Sprintf("{%d,%d}", s.W, s.H)
}

// FormatRect encodes r as "{{x,y},{w,h}}".
func FormatRect(r sheet.Rect) string {
	return fmt.Sprintf("{{%d,%d},{%d,%d}}", r.X, r.Y, r.W, r.H)
}

func formatOffset(x, y float64) string {
	return "{" + strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64) + "}"
}
