package sokuji

import "math"

// rgbToHue returns the HSL hue of a 0xRRGGBB color in [0, 1).
func rgbToHue(color int) float64 {
	r := float64((color>>16)&0xff) / 255
	g := float64((color>>8)&0xff) / 255
	b := float64(color&0xff) / 255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	if hi == lo {
		return 0
	}
	d := hi - lo
	var h float64
	switch hi {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6
}

// hslToRGB converts HSL components in [0, 1] to a 0xRRGGBB color. Channels
// are truncated, not rounded.
func hslToRGB(h, s, l float64) int {
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		q := l + s - l*s
		if l < 0.5 {
			q = l * (1 + s)
		}
		p := 2*l - q
		r = hueToChannel(p, q, h+1.0/3)
		g = hueToChannel(p, q, h)
		b = hueToChannel(p, q, h-1.0/3)
	}
	return int(r*255)<<16 | int(g*255)<<8 | int(b*255)
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

// teamColors spreads hues evenly over the teams. When first is set, team 0
// takes that hue and the rest are spread over the remaining teams.
func teamColors(teamNum int, first *float64) []int {
	hues := make([]float64, 0, teamNum)
	if first != nil {
		hues = append(hues, *first)
	}
	rest := teamNum - len(hues)
	for i := 0; i < rest; i++ {
		hues = append(hues, float64(i)/float64(rest))
	}
	colors := make([]int, teamNum)
	for i, h := range hues {
		colors[i] = hslToRGB(h, 0.8, 0.6)
	}
	return colors
}
