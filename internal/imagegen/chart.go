package imagegen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/lox/weatherscreen/internal/forecast"
	"github.com/lox/weatherscreen/internal/models"
)

// Chart dimensions.
const (
	ChartWidth  = 600
	ChartHeight = 200

	padX      = 40
	padTop    = 44
	padBottom = 40
	dotRadius = 5
	lineWidth = 2.5
)

var ErrEmptySeries = errors.New("empty chart series")

var (
	sunTop    = color.RGBA{0xfb, 0x98, 0x56, 0xff}
	sunBottom = color.RGBA{0xff, 0xe8, 0xd6, 0xff}
	lineColor = color.RGBA{255, 153, 86, 255}
	dotStroke = color.RGBA{0xff, 0xa7, 0x26, 0xff}
	labelInk  = color.RGBA{71, 63, 56, 255}
)

var (
	labelFace font.Face
	fontOnce  sync.Once
	fontErr   error
)

func loadFonts() {
	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse Go Regular: %w", err)
			return
		}
		labelFace, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    14,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create label face: %w", err)
		}
	})
}

// RenderChart draws the series as a PNG line chart with hour labels along the
// bottom and the annotated temperatures above their dots.
func RenderChart(series models.ChartSeries) ([]byte, error) {
	if series.Empty() {
		return nil, ErrEmptySeries
	}
	if len(series.Labels) != len(series.Temps) {
		return nil, fmt.Errorf("series misaligned: %d labels, %d temps", len(series.Labels), len(series.Temps))
	}
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	img := image.NewRGBA(image.Rect(0, 0, ChartWidth, ChartHeight))
	drawBackground(img)

	pts := plotPoints(series.Temps)
	drawLine(img, pts)
	for _, p := range pts {
		drawDot(img, p)
	}

	baseline := float32(ChartHeight - padBottom/2 + 5)
	for i, label := range series.Labels {
		drawCentered(img, label, pts[i].X, baseline, labelInk)
	}
	for i, p := range pts {
		if forecast.Annotated(i) {
			drawCentered(img, forecast.PointAnnotation(series.Temps[i]), p.X, p.Y-12, labelInk)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

type point struct {
	X, Y float32
}

// plotPoints maps temperatures into the drawable area. The axis does not start
// at zero; a flat series sits in the middle.
func plotPoints(temps []float64) []point {
	lo, hi := temps[0], temps[0]
	for _, t := range temps {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}

	plotW := float64(ChartWidth - 2*padX)
	plotH := float64(ChartHeight - padTop - padBottom)

	pts := make([]point, len(temps))
	for i, t := range temps {
		x := float64(ChartWidth) / 2
		if len(temps) > 1 {
			x = padX + plotW*float64(i)/float64(len(temps)-1)
		}
		y := float64(padTop) + plotH*(hi-t)/(hi-lo)
		pts[i] = point{X: float32(x), Y: float32(y)}
	}
	return pts
}

func drawBackground(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		progress := float64(y-b.Min.Y) / float64(b.Dy())
		c := color.RGBA{
			R: lerp(sunTop.R, sunBottom.R, progress),
			G: lerp(sunTop.G, sunBottom.G, progress),
			B: lerp(sunTop.B, sunBottom.B, progress),
			A: 0xff,
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// drawLine strokes the polyline as one quad per segment.
func drawLine(img *image.RGBA, pts []point) {
	if len(pts) < 2 {
		return
	}
	z := vector.NewRasterizer(ChartWidth, ChartHeight)
	half := float32(lineWidth / 2)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		z.MoveTo(a.X+nx, a.Y+ny)
		z.LineTo(b.X+nx, b.Y+ny)
		z.LineTo(b.X-nx, b.Y-ny)
		z.LineTo(a.X-nx, a.Y-ny)
		z.ClosePath()
	}
	z.Draw(img, img.Bounds(), image.NewUniform(lineColor), image.Point{})
}

func drawDot(img *image.RGBA, p point) {
	fillCircle(img, p, dotRadius+1, dotStroke)
	fillCircle(img, p, dotRadius, lineColor)
}

func fillCircle(img *image.RGBA, c point, r float32, col color.Color) {
	const segments = 24
	z := vector.NewRasterizer(ChartWidth, ChartHeight)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		x := c.X + r*float32(math.Cos(theta))
		y := c.Y + r*float32(math.Sin(theta))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

func drawCentered(img draw.Image, text string, cx, baseline float32, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: labelFace,
	}
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(cx*64) - width/2,
		Y: fixed.Int26_6(baseline * 64),
	}
	d.DrawString(text)
}
