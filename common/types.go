// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Color is a linear RGBA color with float components.
type Color struct {
	R, G, B, A float32
}

// Vec4 returns the color as a four component array in RGBA order.
func (c Color) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

var (
	// ColorTransparent clears shadow targets in the direct technique flow.
	ColorTransparent = Color{0, 0, 0, 0}

	// ColorWhite clears the shadow target inside the Monte-Carlo sample loop.
	ColorWhite = Color{1, 1, 1, 1}

	// ColorBlack clears the accumulation targets.
	ColorBlack = Color{0, 0, 0, 1}

	// ColorSky is the clear color of every camera-facing pass.
	ColorSky = Color{0.63, 0.82, 0.96, 1}
)

// Viewport is a pixel rectangle inside a render target. A zero Width or Height means
// "the full extent of the bound attachment".
type Viewport struct {
	X, Y          int
	Width, Height int
}

// IsZero reports whether the viewport was left unspecified.
func (v Viewport) IsZero() bool {
	return v.Width == 0 || v.Height == 0
}

// Square returns a viewport anchored at the origin covering size x size pixels.
func Square(size int) Viewport {
	return Viewport{Width: size, Height: size}
}
