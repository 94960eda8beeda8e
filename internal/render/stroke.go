package render

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"scratchview/internal/state"
)

type vec struct{ x, y float64 }

func (a vec) add(b vec) vec       { return vec{a.x + b.x, a.y + b.y} }
func (a vec) sub(b vec) vec       { return vec{a.x - b.x, a.y - b.y} }
func (a vec) scale(s float64) vec { return vec{a.x * s, a.y * s} }
func (a vec) dot(b vec) float64   { return a.x*b.x + a.y*b.y }
func (a vec) cross(b vec) float64 { return a.x*b.y - a.y*b.x }
func (a vec) len() float64        { return math.Hypot(a.x, a.y) }

// outliner feeds the closed outline pieces of one stroke into a vector
// rasterizer. Every piece is emitted with the same winding so overlapping
// pieces accumulate instead of cancelling; the rasterizer clamps the sum.
type outliner struct {
	r      *vector.Rasterizer
	origin vec
}

func (o *outliner) poly(pts ...vec) {
	if len(pts) < 3 {
		return
	}
	var area float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p.cross(q)
	}
	if area == 0 {
		return
	}
	emit := func(i int) vec { return pts[i].sub(o.origin) }
	if area < 0 {
		emit = func(i int) vec { return pts[len(pts)-1-i].sub(o.origin) }
	}
	p := emit(0)
	o.r.MoveTo(float32(p.x), float32(p.y))
	for i := 1; i < len(pts); i++ {
		p = emit(i)
		o.r.LineTo(float32(p.x), float32(p.y))
	}
	o.r.ClosePath()
}

func (o *outliner) circle(c vec, radius float64) {
	o.poly(circlePoints(c, radius)...)
}

// circlePoints approximates a circle with a polygon whose chord error stays
// under a tenth of a pixel.
func circlePoints(c vec, radius float64) []vec {
	n := 8
	if radius > 0.1 {
		n = int(math.Ceil(math.Pi / math.Acos(1-0.1/radius)))
	}
	n = min(max(n, 8), 512)
	pts := make([]vec, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vec{c.x + radius*math.Cos(a), c.y + radius*math.Sin(a)}
	}
	return pts
}

// dedupe converts a pixel path to float64 and drops consecutive repeats
// and non-finite points.
func dedupe(path []state.Point) []vec {
	out := make([]vec, 0, len(path))
	for _, p := range path {
		v := vec{float64(p.X), float64(p.Y)}
		if math.IsNaN(v.x) || math.IsNaN(v.y) || math.IsInf(v.x, 0) || math.IsInf(v.y, 0) {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

// reach is how far outside its centerline a stroke with p can paint.
func (p Paint) reach() float64 {
	r := float64(p.Width) / 2
	if p.Join == JoinMiter {
		r *= p.miterLimit()
	}
	if p.Cap == CapSquare {
		r = max(r, float64(p.Width)/2*math.Sqrt2)
	}
	return r
}

// clipPath cuts pts down to the parts within margin of r. Segments are
// clipped in float space; a path that leaves and re-enters the area is
// split into separate subpaths. A single point is kept if it lies inside.
func clipPath(pts []vec, r image.Rectangle, margin float64) [][]vec {
	lo := vec{float64(r.Min.X) - margin, float64(r.Min.Y) - margin}
	hi := vec{float64(r.Max.X) + margin, float64(r.Max.Y) + margin}
	if len(pts) == 1 {
		p := pts[0]
		if p.x >= lo.x && p.x <= hi.x && p.y >= lo.y && p.y <= hi.y {
			return [][]vec{pts}
		}
		return nil
	}
	var out [][]vec
	var cur []vec
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b, ok := clipSegment(pts[i], pts[i+1], lo, hi)
		if !ok || a == b {
			flush()
			continue
		}
		if len(cur) == 0 || cur[len(cur)-1] != a {
			flush()
			cur = []vec{a}
		}
		cur = append(cur, b)
		if b != pts[i+1] {
			flush()
		}
	}
	flush()
	return out
}

// clipSegment clips a→b to the box lo..hi (Liang-Barsky).
func clipSegment(a, b, lo, hi vec) (vec, vec, bool) {
	d := b.sub(a)
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-d.x, a.x - lo.x},
		{d.x, hi.x - a.x},
		{-d.y, a.y - lo.y},
		{d.y, hi.y - a.y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = min(t1, t)
		}
	}
	ca, cb := a, b
	if t0 > 0 {
		ca = a.add(d.scale(t0))
	}
	if t1 < 1 {
		cb = a.add(d.scale(t1))
	}
	return ca, cb, true
}

// boundsLimit keeps rectangle coordinates well inside int range.
const boundsLimit = 1 << 30

// strokeBounds returns the pixel rectangle that can be touched by stroking
// pts with paint, before clipping.
func strokeBounds(pts []vec, p Paint) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	reach := p.reach()
	minX, minY := pts[0].x, pts[0].y
	maxX, maxY := minX, minY
	for _, pt := range pts[1:] {
		minX = min(minX, pt.x)
		maxX = max(maxX, pt.x)
		minY = min(minY, pt.y)
		maxY = max(maxY, pt.y)
	}
	edge := func(v float64) int {
		return int(min(max(v, -boundsLimit), boundsLimit))
	}
	return image.Rect(
		edge(math.Floor(minX-reach))-1, edge(math.Floor(minY-reach))-1,
		edge(math.Ceil(maxX+reach))+1, edge(math.Ceil(maxY+reach))+1,
	)
}

// outline emits the stroke of a deduplicated path. A single point draws a
// dot for round and square caps; callers drop lone presses before this.
func (o *outliner) outline(pts []vec, p Paint) {
	if len(pts) == 0 {
		return
	}
	hw := float64(p.Width) / 2

	if len(pts) == 1 {
		c := pts[0]
		switch p.Cap {
		case CapRound:
			o.circle(c, hw)
		case CapSquare:
			o.poly(vec{c.x - hw, c.y - hw}, vec{c.x + hw, c.y - hw}, vec{c.x + hw, c.y + hw}, vec{c.x - hw, c.y + hw})
		}
		return
	}

	last := len(pts) - 2
	for i := 0; i <= last; i++ {
		a, b := pts[i], pts[i+1]
		d := b.sub(a).scale(1 / b.sub(a).len())
		n := vec{-d.y, d.x}.scale(hw)
		if p.Cap == CapSquare {
			if i == 0 {
				a = a.sub(d.scale(hw))
			}
			if i == last {
				b = b.add(d.scale(hw))
			}
		}
		o.poly(a.add(n), b.add(n), b.sub(n), a.sub(n))
	}

	if p.Cap == CapRound {
		o.circle(pts[0], hw)
		o.circle(pts[len(pts)-1], hw)
	}

	for i := 1; i < len(pts)-1; i++ {
		o.join(pts[i-1], pts[i], pts[i+1], hw, p)
	}
}

func (o *outliner) join(prev, at, next vec, hw float64, p Paint) {
	if p.Join == JoinRound {
		o.circle(at, hw)
		return
	}
	d1 := at.sub(prev).scale(1 / at.sub(prev).len())
	d2 := next.sub(at).scale(1 / next.sub(at).len())
	turn := d1.cross(d2)
	if turn == 0 {
		return
	}
	// The gap opens on the side away from the turn.
	side := -1.0
	if turn < 0 {
		side = 1
	}
	n1 := vec{-d1.y, d1.x}.scale(hw * side)
	n2 := vec{-d2.y, d2.x}.scale(hw * side)
	o1, o2 := at.add(n1), at.add(n2)

	if p.Join == JoinMiter {
		u := n1.add(n2).scale(0.5)
		if ul := u.len(); ul > 0 && hw/ul <= p.miterLimit() {
			tip := at.add(u.scale(hw * hw / u.dot(u)))
			o.poly(at, o1, tip, o2)
			return
		}
	}
	o.poly(at, o1, o2)
}
