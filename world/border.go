package world

// Border is the fixed world AABB, set once at startup.
type Border struct {
	MinX, MinY, MaxX, MaxY float32
}

// Width returns the border's horizontal extent.
func (b Border) Width() float32 { return b.MaxX - b.MinX }

// Height returns the border's vertical extent.
func (b Border) Height() float32 { return b.MaxY - b.MinY }

// CenterX returns the horizontal midpoint of the border.
func (b Border) CenterX() float32 { return (b.MinX + b.MaxX) / 2 }

// CenterY returns the vertical midpoint of the border.
func (b Border) CenterY() float32 { return (b.MinY + b.MaxY) / 2 }

// NewBorder builds a Border centred on the origin with the given width and
// height, matching the border.width/border.height config schema.
func NewBorder(width, height float32) Border {
	return Border{MinX: -width / 2, MinY: -height / 2, MaxX: width / 2, MaxY: height / 2}
}
