package arena

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

var (
	White  = Color{1, 1, 1, 1}
	Black  = Color{0, 0, 0, 1}
	Yellow = Color{1, 1, 0, 1}
	Green  = Color{0, 1, 0, 1}
)

func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// Scaled multiplies the color channels, keeping alpha.
func (c Color) Scaled(k float32) Color {
	return Color{c.R * k, c.G * k, c.B * k, c.A}
}

func (c Color) RGB() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}
