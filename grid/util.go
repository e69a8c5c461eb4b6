package grid

import (
	"fmt"

	"github.com/zeu5/gfn-substrate/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RewardGrid holds the rewards of a two dimensional HyperGrid, indexed by
// (first coordinate, second coordinate)
type RewardGrid struct {
	Rewards *types.Tensor[float64]
	Height  int
}

var _ plotter.GridXYZ = &RewardGrid{}

func NewRewardGrid(g *HyperGrid) (*RewardGrid, error) {
	if g.config.NDim != 2 {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("reward grid needs a two dimensional hypergrid, got %d dimensions", g.config.NDim)}
	}
	states, err := types.BuildGrid(g)
	if err != nil {
		return nil, err
	}
	return &RewardGrid{
		Rewards: g.Reward(states),
		Height:  g.config.Height,
	}, nil
}

func (r *RewardGrid) Dims() (int, int) {
	return r.Height, r.Height
}

// Z of column c and row r, the second and first coordinates
func (r *RewardGrid) Z(c, row int) float64 {
	return r.Rewards.At(row, c)
}

func (r *RewardGrid) X(c int) float64 {
	return float64(c)
}

func (r *RewardGrid) Y(row int) float64 {
	return float64(row)
}

func (r *RewardGrid) Min() float64 {
	return floats.Min(r.Rewards.Data())
}

func (r *RewardGrid) Max() float64 {
	return floats.Max(r.Rewards.Data())
}

// SaveHeatmap renders the reward grid to an image file, the format follows
// the file extension
func (r *RewardGrid) SaveHeatmap(title, filePath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "s[1]"
	p.Y.Label.Text = "s[0]"
	p.Add(plotter.NewHeatMap(r, palette.Heat(20, 1)))
	return p.Save(4*vg.Inch, 4*vg.Inch, filePath)
}
