package render

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"slices"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/onnwee/sokuji-bot/sokuji"
)

const (
	imageWidth   = 1280
	stripHeight  = 400
	graphHeight  = 320
	tileSize     = 32
	imageMargin  = 40
	columnsWidth = 1200
)

var (
	tileLight = color.RGBA{0x13, 0x13, 0x13, 0xff}
	tileDark  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	subtle    = color.NRGBA{235, 235, 245, 153}
)

type standing struct {
	name  string
	color color.Color
	score int
}

func rgb(c int) color.RGBA {
	return color.RGBA{uint8(c >> 16), uint8(c >> 8), uint8(c), 0xff}
}

// ScoreImage draws the standings strip shown on stream overlays. Once every
// race is in, a score progression chart is added below it.
func ScoreImage(s *sokuji.Session) ([]byte, error) {
	teamNum := s.TeamNum()
	if teamNum == 0 {
		return nil, fmt.Errorf("session %s has no teams", s.ID)
	}
	withGraph := s.RaceNum > 0 && len(s.Races) == s.RaceNum
	height := stripHeight
	if withGraph {
		height += graphHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, imageWidth, height))
	for y := 0; y < height; y += tileSize {
		for x := 0; x < imageWidth; x += tileSize {
			c := tileDark
			if (x/tileSize+y/tileSize)%2 == 0 {
				c = tileLight
			}
			draw.Draw(img, image.Rect(x, y, x+tileSize, y+tileSize), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	teams := make([]standing, teamNum)
	for i := range teams {
		teams[i] = standing{name: s.Tags[i], color: rgb(colorAt(s.Colors, i)), score: s.Scores[i]}
	}
	if s.Format != 6 {
		slices.SortStableFunc(teams, func(a, b standing) int { return cmp.Compare(b.score, a.score) })
	}
	col := columnsWidth / teamNum
	for i, t := range teams {
		cx := imageMargin + col*i + col/2
		drawText(img, t.name, t.color, cx, 40, 130, col)
		drawText(img, strconv.Itoa(t.score), color.White, cx, 170, 140, col)
	}
	if s.Format == 6 {
		diff := teams[0].score - teams[1].score
		label := strconv.Itoa(diff)
		if diff >= 0 {
			label = "+" + label
		}
		drawText(img, label, subtle, imageMargin+col, 310, 70, col)
	} else {
		for i := 1; i < teamNum; i++ {
			drawText(img, "±"+strconv.Itoa(teams[i-1].score-teams[i].score), subtle, imageMargin+col*i, 310, 70, col)
		}
	}

	if withGraph {
		drawProgression(img, s, image.Rect(120, stripHeight+10, imageWidth-60, height-40))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode score image: %w", err)
	}
	return buf.Bytes(), nil
}

func colorAt(colors []int, i int) int {
	if i < len(colors) {
		return colors[i]
	}
	return 0xffffff
}

// progression returns one cumulative series per plotted line. Format 6 plots
// the running gap between the two teams; other formats plot each team's
// running deviation from an average race.
func progression(s *sokuji.Session) [][]float64 {
	entries := s.Entries()
	if s.Format == 6 {
		series := []float64{0}
		for _, e := range entries {
			series = append(series, series[len(series)-1]+float64(e.Scores[0]-e.Scores[1]))
		}
		return [][]float64{series}
	}
	teamNum := s.TeamNum()
	avg := float64(sokuji.TotalPoints) / float64(teamNum)
	out := make([][]float64, teamNum)
	for i := range out {
		out[i] = []float64{0}
	}
	for _, e := range entries {
		for i := range out {
			d := float64(e.Scores[i])
			if e.IsRace() {
				d -= avg
			}
			out[i] = append(out[i], out[i][len(out[i])-1]+d)
		}
	}
	return out
}

func drawProgression(img *image.RGBA, s *sokuji.Session, area image.Rectangle) {
	series := progression(s)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, line := range series {
		for _, v := range line {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if hi-lo < 1 {
		lo, hi = lo-1, hi+1
	}
	y := func(v float64) int {
		return area.Max.Y - int(math.Round((v-lo)/(hi-lo)*float64(area.Dy())))
	}
	x := func(j, n int) int {
		if n <= 1 {
			return area.Min.X
		}
		return area.Min.X + area.Dx()*j/(n-1)
	}

	if lo <= 0 && hi >= 0 {
		drawLine(img, area.Min.X, y(0), area.Max.X, y(0), subtle, 2)
	}
	zero := "0"
	if s.Format != 6 {
		zero = "Avg."
	}
	drawText(img, signed(int(math.Ceil(hi))), subtle, area.Min.X-60, y(hi)-14, 28, 100)
	drawText(img, signed(int(math.Floor(lo))), subtle, area.Min.X-60, y(lo)-14, 28, 100)
	if lo < 0 && hi > 0 {
		drawText(img, zero, subtle, area.Min.X-60, y(0)-14, 28, 100)
	}

	for i, line := range series {
		for j := 1; j < len(line); j++ {
			c := rgb(colorAt(s.Colors, i))
			if s.Format == 6 && line[j-1]+line[j] < 0 {
				c = rgb(colorAt(s.Colors, 1))
			}
			drawLine(img, x(j-1, len(line)), y(line[j-1]), x(j, len(line)), y(line[j]), c, 4)
		}
	}
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// drawText renders text with the 7x13 bitmap face scaled to height and
// centred on cx, squeezing it horizontally when it is wider than maxWidth.
func drawText(dst *image.RGBA, text string, c color.Color, cx, top, height, maxWidth int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	if w == 0 {
		return
	}
	src := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d.Dst = src
	d.Src = image.NewUniform(c)
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(text)

	dw := min(w*height/face.Height, maxWidth)
	r := image.Rect(cx-dw/2, top, cx-dw/2+dw, top+height)
	draw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}

// drawLine plots a square-brushed Bresenham line.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, c color.Color, thick int) {
	brush := image.NewUniform(c)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		draw.Draw(dst, image.Rect(x0-thick/2, y0-thick/2, x0+thick-thick/2, y0+thick-thick/2), brush, image.Point{}, draw.Over)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}
