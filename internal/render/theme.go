package render

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

func clampChan(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func lerpU8(a, b uint8, t float64) uint8 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return clampChan(int(float64(a) + (float64(b)-float64(a))*t))
}

// Lerp blends linearly per channel toward other by t in [0,1].
func (c RGB) Lerp(other RGB, t float64) RGB {
	return RGB{
		R: lerpU8(c.R, other.R, t),
		G: lerpU8(c.G, other.G, t),
		B: lerpU8(c.B, other.B, t),
	}
}

// VehicleStyle is the categorical look of a vehicle glyph: body colour and
// size in screen pixels at zoom 1.
type VehicleStyle struct {
	Color  RGB
	Width  float64
	Height float64
}

// Theme is the immutable style configuration injected into the Renderer.
type Theme struct {
	Background      RGB
	Road            RGB
	RoadWidth       float64
	Junction        RGB
	JunctionOutline RGB
	JunctionRadius  float64

	Stopped RGB // blend target for long-waiting vehicles

	SignalGreen  RGB
	SignalYellow RGB
	SignalRed    RGB
	SignalOff    RGB
	PanelFill    RGB
	PanelBorder  RGB

	LabelText   RGB
	OverlayText RGB

	Vehicles map[Category]VehicleStyle
}

// DefaultTheme mirrors the classic styling of the visualiser.
func DefaultTheme() Theme {
	return Theme{
		Background:      RGB{R: 255, G: 255, B: 255},
		Road:            RGB{R: 100, G: 100, B: 100},
		RoadWidth:       10,
		Junction:        RGB{R: 100, G: 100, B: 100},
		JunctionOutline: RGB{R: 0, G: 0, B: 0},
		JunctionRadius:  15,

		Stopped: RGB{R: 255, G: 0, B: 0},

		SignalGreen:  RGB{R: 0, G: 255, B: 0},
		SignalYellow: RGB{R: 255, G: 255, B: 0},
		SignalRed:    RGB{R: 255, G: 0, B: 0},
		SignalOff:    RGB{R: 100, G: 100, B: 100},
		PanelFill:    RGB{R: 200, G: 200, B: 200},
		PanelBorder:  RGB{R: 0, G: 0, B: 0},

		LabelText:   RGB{R: 255, G: 255, B: 255},
		OverlayText: RGB{R: 0, G: 0, B: 0},

		Vehicles: map[Category]VehicleStyle{
			CategoryPassenger:  {Color: RGB{B: 255}, Width: 8, Height: 4},
			CategoryTruck:      {Color: RGB{R: 100, G: 100, B: 100}, Width: 10, Height: 5},
			CategoryBus:        {Color: RGB{R: 100, G: 255, B: 100}, Width: 12, Height: 5},
			CategoryMotorcycle: {Color: RGB{R: 255, B: 255}, Width: 6, Height: 3},
			CategoryBicycle:    {Color: RGB{G: 255, B: 255}, Width: 4, Height: 2},
			CategoryEmergency:  {Color: RGB{R: 255}, Width: 8, Height: 4},
		},
	}
}

// VehicleStyle returns the style for a category, falling back to the
// passenger style for anything unknown.
func (t Theme) VehicleStyle(cat Category) VehicleStyle {
	if s, ok := t.Vehicles[cat]; ok {
		return s
	}
	return t.Vehicles[CategoryPassenger]
}
