package graph

import (
	"path"
	"strconv"

	"github.com/zeu5/qlearning-nav/types"
	"github.com/zeu5/qlearning-nav/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// VisitDataSet counts how many times every (state, action) cell was taken.
// Rows are states and columns actions.
type VisitDataSet struct {
	Visits [][]int  `json:"visits"`
	Names  []string `json:"names"`
}

var _ plotter.GridXYZ = &VisitDataSet{}

func NewVisitDataSet(g *Graph) *VisitDataSet {
	n := g.NumStates()
	d := &VisitDataSet{
		Visits: make([][]int, n),
		Names:  make([]string, n),
	}
	for i := 0; i < n; i++ {
		d.Visits[i] = make([]int, n)
		d.Names[i] = g.Name(types.State(i))
	}
	return d
}

func (d *VisitDataSet) Dims() (int, int) {
	return len(d.Visits), len(d.Visits)
}

func (d *VisitDataSet) Z(c, r int) float64 {
	return float64(d.Visits[r][c])
}

func (d *VisitDataSet) X(c int) float64 {
	return float64(c)
}

func (d *VisitDataSet) Y(r int) float64 {
	return float64(r)
}

func (d *VisitDataSet) Min() float64 {
	return 0.0
}

func (d *VisitDataSet) Max() float64 {
	max := 0
	for _, row := range d.Visits {
		for _, count := range row {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

// MergeVisits sums the visit counts of datasets over the same graph
func MergeVisits(dataSets []types.DataSet) *VisitDataSet {
	merged := &VisitDataSet{
		Visits: make([][]int, 0),
		Names:  make([]string, 0),
	}
	for _, ds := range dataSets {
		d, ok := ds.(*VisitDataSet)
		if !ok {
			continue
		}
		if len(merged.Visits) == 0 {
			merged.Names = append(merged.Names, d.Names...)
			for range d.Visits {
				merged.Visits = append(merged.Visits, make([]int, len(d.Visits)))
			}
		}
		for i, row := range d.Visits {
			if i >= len(merged.Visits) {
				break
			}
			for j, count := range row {
				if j < len(merged.Visits[i]) {
					merged.Visits[i][j] += count
				}
			}
		}
	}
	return merged
}

// VisitAnalyzer accumulates a VisitDataSet over the episodes of a run
type VisitAnalyzer struct {
	graph   *Graph
	dataSet *VisitDataSet
}

var _ types.Analyzer = &VisitAnalyzer{}

func NewVisitAnalyzer(g *Graph) *VisitAnalyzer {
	return &VisitAnalyzer{
		graph:   g,
		dataSet: NewVisitDataSet(g),
	}
}

func (v *VisitAnalyzer) Analyze(_ int, _ int, _ string, eCtx *types.EpisodeContext, _ types.Policy) {
	for i := 0; i < eCtx.Trace.Len(); i++ {
		state, action, _, _, _ := eCtx.Trace.Get(i)
		if !v.graph.valid(state) || !v.graph.valid(action) {
			continue
		}
		v.dataSet.Visits[state][action] += 1
	}
}

func (v *VisitAnalyzer) DataSet() types.DataSet {
	return v.dataSet
}

func (v *VisitAnalyzer) Reset() {
	v.dataSet = NewVisitDataSet(v.graph)
}

// HeatMapComparator draws one heat map of the visits per experiment and one
// of all the experiments together
func HeatMapComparator(plotPath string) types.Comparator {
	return func(run int, _ int, names []string, ds []types.DataSet) error {
		if err := util.EnsureDir(plotPath); err != nil {
			return err
		}
		for i, name := range names {
			dataSet, ok := ds[i].(*VisitDataSet)
			if !ok {
				continue
			}
			if err := saveHeatMap(name, dataSet, path.Join(plotPath, strconv.Itoa(run)+"_"+name+"_visits.png")); err != nil {
				return err
			}
		}
		return saveHeatMap("All", MergeVisits(ds), path.Join(plotPath, strconv.Itoa(run)+"_visits.png"))
	}
}

func saveHeatMap(title string, dataSet *VisitDataSet, filePath string) error {
	if dataSet.Max() == 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Action"
	p.Y.Label.Text = "State"
	p.Add(plotter.NewHeatMap(dataSet, palette.Heat(20, 1)))
	return p.Save(4*vg.Inch, 4*vg.Inch, filePath)
}

// OptimalityAnalyzer records, after every episode, the fraction of non goal
// states from which the greedy move lies on a shortest path to the goal.
// States that cannot reach the goal are left out.
type OptimalityAnalyzer struct {
	graph  *Graph
	dist   []int
	series []float64
}

var _ types.Analyzer = &OptimalityAnalyzer{}

func NewOptimalityAnalyzer(g *Graph) *OptimalityAnalyzer {
	return &OptimalityAnalyzer{
		graph:  g,
		dist:   g.Distances(),
		series: make([]float64, 0),
	}
}

func (o *OptimalityAnalyzer) Analyze(_ int, _ int, _ string, _ *types.EpisodeContext, policy types.Policy) {
	greedy, ok := policy.(types.GreedyPolicy)
	if !ok {
		o.series = append(o.series, 0)
		return
	}
	o.series = append(o.series, Optimality(o.graph, o.dist, greedy.Greedy))
}

func (o *OptimalityAnalyzer) DataSet() types.DataSet {
	return o.series
}

func (o *OptimalityAnalyzer) Reset() {
	o.series = make([]float64, 0)
}

// Optimality is the fraction of the states that reach the goal whose
// greedy move is optimal. dist comes from g.Distances().
func Optimality(g *Graph, dist []int, greedy func(types.State) types.State) float64 {
	total := 0
	optimal := 0
	for _, s := range g.States() {
		if dist[s] <= 0 {
			continue
		}
		total += 1
		move := greedy(s)
		for _, a := range g.optimalFrom(s, dist) {
			if a == move {
				optimal += 1
				break
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(optimal) / float64(total)
}
