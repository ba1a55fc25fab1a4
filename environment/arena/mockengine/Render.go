package mockengine

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/samuelfneumann/goarena/timestep"
)

var (
	groundColour = color.RGBA{R: 90, G: 70, B: 50, A: 255}
	healthColour = color.RGBA{R: 240, G: 200, B: 40, A: 255}
	damageColour = color.RGBA{R: 160, G: 30, B: 30, A: 255}

	skyColours = []color.RGBA{
		{R: 30, G: 30, B: 60, A: 255},
		{R: 60, G: 30, B: 30, A: 255},
		{R: 30, G: 60, B: 30, A: 255},
		{R: 50, G: 50, B: 50, A: 255},
	}
)

// render draws the arena and returns its pixels in row-major H×W×C
// order
func (e *Engine) render() ([]uint8, error) {
	h, w, c := e.config.FrameShape[0], e.config.FrameShape[1],
		e.config.FrameShape[2]
	scaleX := float64(w) / ArenaWidth
	scaleY := float64(h) / ArenaHeight

	// toPixels converts world coordinates to pixel coordinates, with
	// the origin of the image at the top left
	toPixels := func(x, y float64) (float64, float64) {
		return x * scaleX, float64(h) - y*scaleY
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(skyColours[(e.stage-1)%len(skyColours)])
	dc.Clear()

	// Ground
	_, groundY := toPixels(0, GroundY)
	dc.DrawRectangle(0, groundY, float64(w), float64(h)-groundY)
	dc.SetColor(groundColour)
	dc.Fill()

	// Fighters
	for _, role := range []timestep.Role{timestep.P1, timestep.P2} {
		f := e.fighters[role]
		pos := f.body.GetPosition()
		left, top := toPixels(pos.X-FighterHalfW, pos.Y+FighterHalfH)
		dc.DrawRectangle(left, top, 2*FighterHalfW*scaleX,
			2*FighterHalfH*scaleY)
		dc.SetColor(f.colour())
		dc.Fill()

		if f.attacking > 0 {
			dir := 1.0
			if f.x() > e.fighters[role.Opponent()].x() {
				dir = -1.0
			}
			x1, y1 := toPixels(pos.X+dir*FighterHalfW, pos.Y+FighterHalfH/3)
			x2, y2 := toPixels(pos.X+dir*(Reach-FighterHalfW), pos.Y+FighterHalfH/3)
			dc.SetLineWidth(2.0)
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		}
	}

	// Health bars
	barW := float64(w) * 0.4
	barH := float64(h) * 0.05
	for i, role := range []timestep.Role{timestep.P1, timestep.P2} {
		f := e.fighters[role]
		x := float64(w)*0.05 + float64(i)*float64(w)*0.5
		y := float64(h) * 0.05

		dc.DrawRectangle(x, y, barW, barH)
		dc.SetColor(damageColour)
		dc.Fill()

		dc.DrawRectangle(x, y, barW*f.health/e.config.MaxHealth, barH)
		dc.SetColor(healthColour)
		dc.Fill()
	}

	return pixels(dc.Image(), c)
}

// pixels converts an image to row-major H×W×C bytes with 1 (grayscale)
// or 3 (RGB) channels
func pixels(img image.Image, channels int) ([]uint8, error) {
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("pixels: unsupported number of channels %v",
			channels)
	}

	bounds := img.Bounds()
	out := make([]uint8, 0, bounds.Dx()*bounds.Dy()*channels)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if channels == 3 {
				out = append(out, rgba.R, rgba.G, rgba.B)
				continue
			}
			gray := color.GrayModel.Convert(rgba).(color.Gray)
			out = append(out, gray.Y)
		}
	}
	return out, nil
}
