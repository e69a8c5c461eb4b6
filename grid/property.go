package grid

import "math"

// reward of a single state. With ax_d = |s_d/(Height-1) - 0.5| it is
//
//	R0 + R1 * prod_d [0.25 < ax_d] + R2 * prod_d [0.3 < ax_d < 0.4]
//
// which puts high reward in the corners of the grid. It is defined on sf too.
func (g *HyperGrid) reward(state []int64) float64 {
	outer, band := 1.0, 1.0
	for _, v := range state {
		ax := math.Abs(float64(v)/float64(g.config.Height-1) - 0.5)
		if !(ax > 0.25) {
			outer = 0
		}
		if !(ax > 0.3 && ax < 0.4) {
			band = 0
		}
	}
	return g.config.R0 + g.config.R1*outer + g.config.R2*band
}
