// Package sweep expands parameter-sweep axes into fully resolved
// simulator invocations and encodes the adaptive stopping bounds each
// invocation carries.
package sweep

import (
	"fmt"
	"strconv"
)

// Distance is one code-distance triple (di, dj, rounds).
type Distance struct {
	Di int `json:"di"`
	Dj int `json:"dj"`
	T  int `json:"t"`
}

// Point is one fully resolved configuration point. P is the Pauli noise
// rate, Pe the erasure rate; exactly one of them varies along a sweep's
// noise axis, the other stays pinned.
type Point struct {
	Distance
	P  float64 `json:"p"`
	Pe float64 `json:"pe"`
}

// Key returns a stable, filesystem-safe identity for the point, used for
// result filenames and deduplication.
func (p Point) Key() string {
	key := fmt.Sprintf("d%d_%d_%d-p%s", p.Di, p.Dj, p.T, formatRate(p.P))
	if p.Pe != 0 {
		key += "-pe" + formatRate(p.Pe)
	}
	return key
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// MalformedSweepError reports co-varying axis vectors of unequal length.
type MalformedSweepError struct {
	Axis string
	Want int
	Got  int
}

func (e *MalformedSweepError) Error() string {
	return fmt.Sprintf("malformed sweep: axis %q has length %d, co-varying axes require %d", e.Axis, e.Got, e.Want)
}

// Axes describes one sweep's configuration dimensions. Di, Dj and T are
// declared co-varying: they are zipped into distance triples and must have
// equal length. Dj and T may be left empty, in which case they broadcast
// from Di (square codes with T = Di rounds). Rates is the independent
// noise axis and combines cartesian against the distance triples.
type Axes struct {
	Di    []int
	Dj    []int
	T     []int
	Rates []float64
}

// Distances zips the co-varying distance vectors into triples.
func (a Axes) Distances() ([]Distance, error) {
	n := len(a.Di)
	if n == 0 {
		return nil, &MalformedSweepError{Axis: "di", Want: 1, Got: 0}
	}
	dj, t := a.Dj, a.T
	if len(dj) == 0 {
		dj = a.Di
	}
	if len(t) == 0 {
		t = a.Di
	}
	if len(dj) != n {
		return nil, &MalformedSweepError{Axis: "dj", Want: n, Got: len(dj)}
	}
	if len(t) != n {
		return nil, &MalformedSweepError{Axis: "t", Want: n, Got: len(t)}
	}
	ds := make([]Distance, n)
	for i := 0; i < n; i++ {
		ds[i] = Distance{Di: a.Di[i], Dj: dj[i], T: t[i]}
	}
	return ds, nil
}

// Expand produces the sweep's configuration points, distance-major: all
// noise rates for the first distance triple, then the next triple, and so
// on. Aggregated outputs rely on this order. When erasure is true the
// noise axis feeds the erasure rate and the Pauli rate stays at zero.
func Expand(a Axes, erasure bool) ([]Point, error) {
	ds, err := a.Distances()
	if err != nil {
		return nil, err
	}
	if len(a.Rates) == 0 {
		return nil, &MalformedSweepError{Axis: "rates", Want: 1, Got: 0}
	}
	points := make([]Point, 0, len(ds)*len(a.Rates))
	for _, d := range ds {
		for _, r := range a.Rates {
			pt := Point{Distance: d}
			if erasure {
				pt.Pe = r
			} else {
				pt.P = r
			}
			points = append(points, pt)
		}
	}
	return points, nil
}

// Rate returns the value of the point along the sweep's varying noise axis.
func (p Point) Rate(erasure bool) float64 {
	if erasure {
		return p.Pe
	}
	return p.P
}
