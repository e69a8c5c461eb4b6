package types

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Coverage counts the distinct states visited by successive trajectory
// batches. The sink state is not counted.
type Coverage struct {
	visits map[string]int
	unique []int
}

func NewCoverage() *Coverage {
	return &Coverage{
		visits: make(map[string]int),
		unique: make([]int, 0),
	}
}

// Add records every state of every trajectory up to its terminal marker
func (c *Coverage) Add(t *Trajectories) {
	t.eachStep(func(_, _ int, row []int64) {
		if equalRow(row, t.states.space.sf.data) {
			return
		}
		c.visits[formatRow(row)] += 1
	})
	c.unique = append(c.unique, len(c.visits))
}

// Unique is the number of distinct states seen so far
func (c *Coverage) Unique() int {
	return len(c.visits)
}

// Visits of a single state
func (c *Coverage) Visits(state []int64) int {
	return c.visits[formatRow(state)]
}

// History of Unique after each added batch
func (c *Coverage) History() []int {
	out := make([]int, len(c.unique))
	copy(out, c.unique)
	return out
}

// Plot draws the coverage history, one point per added batch
func (c *Coverage) Plot(name, filePath string) error {
	p := plot.New()
	p.Title.Text = "Coverage"
	p.X.Label.Text = "Batch"
	p.Y.Label.Text = "States covered"
	points := make(plotter.XYs, len(c.unique))
	for i, v := range c.unique {
		points[i] = plotter.XY{
			X: float64(i),
			Y: float64(v),
		}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("coverage line: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add(name, line)
	return p.Save(8*vg.Inch, 8*vg.Inch, filePath)
}

// eachStep visits the states of every trajectory in order, stopping after
// the first terminal marker
func (t *Trajectories) eachStep(f func(i, step int, row []int64)) {
	for i := 0; i < t.nTrajectories; i++ {
		for step := 0; step <= int(t.whenIsDone.data[i]); step++ {
			f(i, step, t.states.row(step*t.nTrajectories+i))
		}
	}
}
