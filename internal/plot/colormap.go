package plot

import (
	"fmt"
	"image/color"
	"math"
)

// Colormap maps a normalized value in [0, 1] to a color.
type Colormap func(t float64) color.NRGBA

// anchor-based colormaps: linear interpolation between fixed stops.
type stop struct {
	t       float64
	r, g, b uint8
}

func rampColormap(stops []stop) Colormap {
	return func(t float64) color.NRGBA {
		if math.IsNaN(t) {
			return color.NRGBA{}
		}
		if t <= stops[0].t {
			s := stops[0]
			return color.NRGBA{R: s.r, G: s.g, B: s.b, A: 255}
		}
		for i := 1; i < len(stops); i++ {
			if t <= stops[i].t {
				a, b := stops[i-1], stops[i]
				f := (t - a.t) / (b.t - a.t)
				return color.NRGBA{
					R: lerp8(a.r, b.r, f),
					G: lerp8(a.g, b.g, f),
					B: lerp8(a.b, b.b, f),
					A: 255,
				}
			}
		}
		s := stops[len(stops)-1]
		return color.NRGBA{R: s.r, G: s.g, B: s.b, A: 255}
	}
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + f*(float64(b)-float64(a))))
}

// Gray is the amplitude colormap used for seismic slides.
var Gray = rampColormap([]stop{
	{0, 0, 0, 0},
	{1, 255, 255, 255},
})

// Seismic is a blue-white-red diverging palette centered at 0.5.
var Seismic = rampColormap([]stop{
	{0.0, 0, 0, 160},
	{0.5, 255, 255, 255},
	{1.0, 160, 0, 0},
})

// Viridis approximates the matplotlib default used for metric maps.
var Viridis = rampColormap([]stop{
	{0.00, 68, 1, 84},
	{0.25, 59, 82, 139},
	{0.50, 33, 145, 140},
	{0.75, 94, 201, 98},
	{1.00, 253, 231, 37},
})

// ByName resolves a colormap from a config string.
func ByName(name string) (Colormap, error) {
	switch name {
	case "", "gray":
		return Gray, nil
	case "seismic":
		return Seismic, nil
	case "viridis":
		return Viridis, nil
	default:
		return nil, fmt.Errorf("plot: unknown colormap %q", name)
	}
}
