package gesture

import "fmt"

// Point is a raw panel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an open rectangle in panel units. A point lying exactly on an
// edge is outside; panel thresholds are tuned against that.
type Rect struct {
	XMin int `json:"xMin"`
	XMax int `json:"xMax"`
	YMin int `json:"yMin"`
	YMax int `json:"yMax"`
}

func (r Rect) Contains(p Point) bool {
	return p.X < r.XMax && p.X > r.XMin && p.Y < r.YMax && p.Y > r.YMin
}

func (r Rect) String() string {
	return fmt.Sprintf("x %d-%d y %d-%d", r.XMin, r.XMax, r.YMin, r.YMax)
}

// Offset describes a rectangle relative to an anchor point. Sizes are
// always positive, offsets may point in any direction.
type Offset struct {
	XOffset int `json:"xOffset"`
	XSize   int `json:"xSize"`
	YOffset int `json:"yOffset"`
	YSize   int `json:"ySize"`
}

// At places the offset rectangle relative to p.
func (o Offset) At(p Point) Rect {
	xMin := p.X + o.XOffset
	yMin := p.Y + o.YOffset
	return Rect{
		XMin: xMin,
		XMax: xMin + o.XSize,
		YMin: yMin,
		YMax: yMin + o.YSize,
	}
}

// StageKind tells how a stage's target rectangle is obtained.
type StageKind int

const (
	// StageFixed stages use an absolute rectangle.
	StageFixed StageKind = iota
	// StageRelative stages are placed relative to the point where the
	// previous stage latched.
	StageRelative
)

// Stage is one barrier of a gesture.
type Stage struct {
	Kind   StageKind
	Rect   Rect
	Offset Offset
}

func Fixed(r Rect) Stage {
	return Stage{Kind: StageFixed, Rect: r}
}

func Relative(o Offset) Stage {
	return Stage{Kind: StageRelative, Offset: o}
}

// Resolve returns the absolute target rectangle for this stage given the
// point at which the previous stage was satisfied.
func (s Stage) Resolve(anchor Point) Rect {
	if s.Kind == StageRelative {
		return s.Offset.At(anchor)
	}
	return s.Rect
}

// Kind distinguishes straight-line swipes from direction tracking gestures.
type Kind int

const (
	KindStatic Kind = iota
	KindDynamic
	KindDoubleTap
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	case KindDoubleTap:
		return "doubletap"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Definition is one gesture bank.
type Definition struct {
	Name   string
	Kind   Kind
	Bit    Mask
	Stages [3]Stage
}

// Static builds a straight-line gesture out of three fixed rectangles.
func Static(name string, bit Mask, stage1, stage2, stage3 Rect) Definition {
	return Definition{
		Name:   name,
		Kind:   KindStatic,
		Bit:    bit,
		Stages: [3]Stage{Fixed(stage1), Fixed(stage2), Fixed(stage3)},
	}
}

// Dynamic builds a gesture anchored in a fixed rectangle whose following
// stages are placed relative to where the finger was when the previous
// stage latched.
func Dynamic(name string, bit Mask, anchor Rect, stage2, stage3 Offset) Definition {
	return Definition{
		Name:   name,
		Kind:   KindDynamic,
		Bit:    bit,
		Stages: [3]Stage{Fixed(anchor), Relative(stage2), Relative(stage3)},
	}
}

// Band is a closed vertical range: both edges count as inside.
type Band struct {
	YMin int `json:"yMin"`
	YMax int `json:"yMax"`
}

func (b Band) Contains(y int) bool {
	return y >= b.YMin && y <= b.YMax
}
