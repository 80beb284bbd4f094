package policies

import (
	"sync"

	"github.com/zeu5/qlearning-nav/types"
	"github.com/zeu5/qlearning-nav/util"
	"gonum.org/v1/gonum/mat"
)

// QTable holds one value per (state, action) pair of an environment with
// n states. Actions are states so the table is n x n, all zero at start.
type QTable struct {
	lock  sync.RWMutex
	table *mat.Dense
	size  int
}

func NewQTable(size int) *QTable {
	if size <= 0 {
		size = 1
	}
	return &QTable{
		table: mat.NewDense(size, size, nil),
		size:  size,
	}
}

func (q *QTable) Size() int {
	return q.size
}

func (q *QTable) valid(s types.State) bool {
	return s >= 0 && int(s) < q.size
}

// Get returns 0 for pairs outside the table
func (q *QTable) Get(state, action types.State) float64 {
	if !q.valid(state) || !q.valid(action) {
		return 0
	}
	q.lock.RLock()
	defer q.lock.RUnlock()
	return q.table.At(int(state), int(action))
}

func (q *QTable) Set(state, action types.State, val float64) {
	if !q.valid(state) || !q.valid(action) {
		return
	}
	q.lock.Lock()
	defer q.lock.Unlock()
	q.table.Set(int(state), int(action), val)
}

// MaxAmong returns the largest value of the actions from state. The maximum
// starts at the first action so an all negative row still yields a value
// that is in the table.
func (q *QTable) MaxAmong(state types.State, actions []types.State) (float64, bool) {
	q.lock.RLock()
	defer q.lock.RUnlock()
	return q.maxAmong(state, actions)
}

func (q *QTable) maxAmong(state types.State, actions []types.State) (float64, bool) {
	_, val, ok := q.argMax(state, actions)
	return val, ok
}

func (q *QTable) argMax(state types.State, actions []types.State) (types.State, float64, bool) {
	if !q.valid(state) {
		return state, 0, false
	}
	found := false
	maxAction := state
	maxVal := 0.0
	for _, a := range actions {
		if !q.valid(a) {
			continue
		}
		val := q.table.At(int(state), int(a))
		if !found || val > maxVal {
			maxAction = a
			maxVal = val
			found = true
		}
	}
	return maxAction, maxVal, found
}

// Best returns the action with the largest value, the first one on ties.
// With no actions the state itself is returned.
func (q *QTable) Best(state types.State, actions []types.State) types.State {
	q.lock.RLock()
	defer q.lock.RUnlock()
	best, _, _ := q.argMax(state, actions)
	return best
}

// Apply replaces Q(state, action) with update(Q(state, action), maxQ) where
// maxQ is the largest value among nextActions from next (0 when there are
// none). The read and the write happen under the same lock.
func (q *QTable) Apply(state, action, next types.State, nextActions []types.State, update func(cur, maxNext float64) float64) float64 {
	if !q.valid(state) || !q.valid(action) {
		return 0
	}
	q.lock.Lock()
	defer q.lock.Unlock()

	maxNext, _ := q.maxAmong(next, nextActions)
	val := update(q.table.At(int(state), int(action)), maxNext)
	q.table.Set(int(state), int(action), val)
	return val
}

// Row returns a copy of the values of state
func (q *QTable) Row(state types.State) []float64 {
	if !q.valid(state) {
		return nil
	}
	q.lock.RLock()
	defer q.lock.RUnlock()
	return mat.Row(nil, int(state), q.table)
}

func (q *QTable) Rows() [][]float64 {
	q.lock.RLock()
	defer q.lock.RUnlock()
	rows := make([][]float64, q.size)
	for i := 0; i < q.size; i++ {
		rows[i] = mat.Row(nil, i, q.table)
	}
	return rows
}

func (q *QTable) Reset() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.table.Zero()
}

// Record writes the rows of the table as json
func (q *QTable) Record(filePath string) error {
	return util.WriteJSON(filePath, q.Rows())
}
