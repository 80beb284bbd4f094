package types

import (
	"fmt"
	"path"
	"strconv"

	"github.com/zeu5/qlearning-nav/util"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SeriesAnalyzer records one value per episode. The dataset is a []float64.
type SeriesAnalyzer struct {
	measure func(*EpisodeContext, Policy) float64
	series  []float64
}

var _ Analyzer = &SeriesAnalyzer{}

func NewSeriesAnalyzer(measure func(*EpisodeContext, Policy) float64) *SeriesAnalyzer {
	return &SeriesAnalyzer{
		measure: measure,
		series:  make([]float64, 0),
	}
}

func (s *SeriesAnalyzer) Analyze(_ int, _ int, _ string, eCtx *EpisodeContext, policy Policy) {
	s.series = append(s.series, s.measure(eCtx, policy))
}

func (s *SeriesAnalyzer) DataSet() DataSet {
	return s.series
}

func (s *SeriesAnalyzer) Reset() {
	s.series = make([]float64, 0)
}

// EpisodeLengthAnalyzer records the number of steps of every episode
func EpisodeLengthAnalyzer() *SeriesAnalyzer {
	return NewSeriesAnalyzer(func(eCtx *EpisodeContext, _ Policy) float64 {
		return float64(eCtx.Timesteps)
	})
}

// CoverageAnalyzer records the number of distinct (state, action) pairs
// taken so far
type CoverageAnalyzer struct {
	visits *VisitGraph
	series []float64
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{
		visits: NewVisitGraph(),
		series: make([]float64, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, _ int, _ string, eCtx *EpisodeContext, _ Policy) {
	for i := 0; i < eCtx.Trace.Len(); i++ {
		state, action, next, _, _ := eCtx.Trace.Get(i)
		c.visits.Update(state, action, next)
	}
	c.series = append(c.series, float64(c.visits.Pairs()))
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	return c.series
}

func (c *CoverageAnalyzer) Reset() {
	c.visits = NewVisitGraph()
	c.series = make([]float64, 0)
}

// LinePlotComparator plots one line per experiment of the []float64 datasets
func LinePlotComparator(plotPath, yLabel, suffix string) Comparator {
	return func(run int, _ int, names []string, ds []DataSet) error {
		if err := util.EnsureDir(plotPath); err != nil {
			return err
		}
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = yLabel
		for i := 0; i < len(names); i++ {
			series, ok := ds[i].([]float64)
			if !ok || len(series) == 0 {
				continue
			}
			points := make(plotter.XYs, len(series))
			for j, v := range series {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			fmt.Printf("%s: mean %s %.2f, last %.2f\n", names[i], yLabel, floats.Sum(series)/float64(len(series)), series[len(series)-1])
		}
		return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_"+suffix+".png"))
	}
}

// JSONComparator stores the datasets keyed by experiment name
func JSONComparator(savePath, suffix string) Comparator {
	return func(run int, _ int, names []string, ds []DataSet) error {
		data := make(map[string]DataSet)
		for i, name := range names {
			data[name] = ds[i]
		}
		return util.WriteJSON(path.Join(savePath, strconv.Itoa(run)+"_"+suffix+".json"), data)
	}
}

// Combine runs all the comparators in order, stopping at the first error
func Combine(comparators ...Comparator) Comparator {
	return func(run int, episodes int, names []string, ds []DataSet) error {
		for _, c := range comparators {
			if err := c(run, episodes, names, ds); err != nil {
				return err
			}
		}
		return nil
	}
}
