package spatial

import "math"

// FlowField provides O(1) per-agent navigation via a precomputed vector
// field: instead of running pathfinding once per agent per tick, one field
// is generated per goal and shared by every agent moving toward it. The
// match engine uses this for defensive recovery: each team gets one field
// toward the center of its own goal line, generated on first use and
// shared by all of that team's out-of-possession outfielders, which is far
// cheaper than N individual searches.
//
// Like Grid, the field is origin-aware: cell (0,0) covers the world
// rectangle starting at (originX, originY), so a pitch centered on the
// origin with negative home-side coordinates is addressed directly.
//
// Origin: Treuille, Cooper, Popović. "Continuum Crowds." SIGGRAPH 2006.
type FlowField struct {
	originX, originY float64
	cols, rows       int
	cellSize         float64
	invCellSize      float64
	integration      []float32 // cost to reach goal from each cell
	flowX            []float32
	flowY            []float32
	blocked          []bool
	queue            []int // reusable BFS queue
}

// NewFlowField creates a field covering [minX, minX+width] x [minY,
// minY+height] at the given cell resolution.
func NewFlowField(minX, minY, width, height, cellSize float64) *FlowField {
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	size := cols * rows
	return &FlowField{
		originX:     minX,
		originY:     minY,
		cols:        cols,
		rows:        rows,
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		integration: make([]float32, size),
		flowX:       make([]float32, size),
		flowY:       make([]float32, size),
		blocked:     make([]bool, size),
		queue:       make([]int, 0, size),
	}
}

// SetBlocked replaces the entire blocked-cell mask; len(blocked) must equal
// cols*rows or the call is a no-op.
func (f *FlowField) SetBlocked(blocked []bool) {
	if len(blocked) != len(f.blocked) {
		return
	}
	copy(f.blocked, blocked)
}

// SetCellBlocked marks the cell containing (worldX, worldY) blocked or
// clear. The match engine does not block any cells.
func (f *FlowField) SetCellBlocked(worldX, worldY float64, isBlocked bool) {
	col, row, ok := f.cellCoord(worldX, worldY)
	if !ok {
		return
	}
	f.blocked[row*f.cols+col] = isBlocked
}

func (f *FlowField) cellCoord(x, y float64) (col, row int, ok bool) {
	col = int((x - f.originX) * f.invCellSize)
	row = int((y - f.originY) * f.invCellSize)
	if col < 0 || col >= f.cols || row < 0 || row >= f.rows {
		return 0, 0, false
	}
	return col, row, true
}

var neighborDX = [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
var neighborDY = [8]int{-1, -1, -1, 0, 0, 1, 1, 1}
var neighborCost = [8]float32{1.41421356, 1.0, 1.41421356, 1.0, 1.0, 1.41421356, 1.0, 1.41421356}

// Generate computes the field toward (goalX, goalY) via a queue-based
// integration pass (step cost 1 orthogonally, √2 diagonally; a cell is
// re-queued whenever its cost drops, so costs settle at their shortest-path
// values) followed by a gradient-descent pass producing unit flow vectors. O(cols*rows); call
// again whenever the goal or blocked mask changes.
func (f *FlowField) Generate(goalX, goalY float64) {
	maxCost := float32(math.MaxFloat32)
	for i := range f.integration {
		f.integration[i] = maxCost
	}

	goalCol, goalRow, ok := f.cellCoord(goalX, goalY)
	if !ok {
		goalCol = clampInt(goalCol, 0, f.cols-1)
		goalRow = clampInt(goalRow, 0, f.rows-1)
	}
	goalIdx := goalRow*f.cols + goalCol
	if f.blocked[goalIdx] {
		return
	}
	f.integration[goalIdx] = 0

	f.queue = f.queue[:0]
	f.queue = append(f.queue, goalIdx)

	head := 0
	for head < len(f.queue) {
		current := f.queue[head]
		head++

		row := current / f.cols
		col := current % f.cols
		currentCost := f.integration[current]

		for i := 0; i < 8; i++ {
			nc := col + neighborDX[i]
			nr := row + neighborDY[i]
			if nc < 0 || nc >= f.cols || nr < 0 || nr >= f.rows {
				continue
			}
			nidx := nr*f.cols + nc
			if f.blocked[nidx] {
				continue
			}
			newCost := currentCost + neighborCost[i]
			if newCost < f.integration[nidx] {
				f.integration[nidx] = newCost
				f.queue = append(f.queue, nidx)
			}
		}
	}

	for idx := 0; idx < len(f.integration); idx++ {
		if f.integration[idx] == maxCost {
			f.flowX[idx], f.flowY[idx] = 0, 0
			continue
		}
		row := idx / f.cols
		col := idx % f.cols
		bestDX, bestDY := float32(0), float32(0)
		bestCost := f.integration[idx]

		for i := 0; i < 8; i++ {
			nc := col + neighborDX[i]
			nr := row + neighborDY[i]
			if nc < 0 || nc >= f.cols || nr < 0 || nr >= f.rows {
				continue
			}
			nidx := nr*f.cols + nc
			if f.integration[nidx] < bestCost {
				bestCost = f.integration[nidx]
				bestDX = float32(neighborDX[i])
				bestDY = float32(neighborDY[i])
			}
		}

		length := float32(math.Sqrt(float64(bestDX*bestDX + bestDY*bestDY)))
		if length > 0 {
			f.flowX[idx] = bestDX / length
			f.flowY[idx] = bestDY / length
		} else {
			f.flowX[idx], f.flowY[idx] = 0, 0
		}
	}
}

// Lookup returns the unit flow direction at world position (x, y), or (0,0)
// if out of bounds or unreachable.
func (f *FlowField) Lookup(x, y float64) (vx, vy float32) {
	col, row, ok := f.cellCoord(x, y)
	if !ok {
		return 0, 0
	}
	idx := row*f.cols + col
	return f.flowX[idx], f.flowY[idx]
}

// LookupWithCost also returns the integration cost (distance-to-goal
// proxy) at (x, y).
func (f *FlowField) LookupWithCost(x, y float64) (vx, vy, cost float32) {
	col, row, ok := f.cellCoord(x, y)
	if !ok {
		return 0, 0, float32(math.MaxFloat32)
	}
	idx := row*f.cols + col
	return f.flowX[idx], f.flowY[idx], f.integration[idx]
}

// Dimensions returns the field's cell-grid shape and cell size.
func (f *FlowField) Dimensions() (cols, rows int, cellSize float64) {
	return f.cols, f.rows, f.cellSize
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FlowFieldManager caches one field per named goal. The match engine keys
// one field per team as "recover:<teamID>" and creates it once with
// GetOrCreate; it does not call Regenerate.
type FlowFieldManager struct {
	minX, minY, width, height, cellSize float64
	fields                              map[string]*FlowField
}

// NewFlowFieldManager creates a manager over the given world rectangle.
func NewFlowFieldManager(minX, minY, width, height, cellSize float64) *FlowFieldManager {
	return &FlowFieldManager{
		minX: minX, minY: minY, width: width, height: height, cellSize: cellSize,
		fields: make(map[string]*FlowField),
	}
}

// GetOrCreate returns the cached field for goalKey, generating it toward
// (goalX, goalY) if it doesn't exist yet.
func (m *FlowFieldManager) GetOrCreate(goalKey string, goalX, goalY float64) *FlowField {
	if field, ok := m.fields[goalKey]; ok {
		return field
	}
	field := NewFlowField(m.minX, m.minY, m.width, m.height, m.cellSize)
	field.Generate(goalX, goalY)
	m.fields[goalKey] = field
	return field
}

// Regenerate recomputes the field for goalKey, e.g. after the goal moves
// (a new pressing trigger point) or a blocked cell changes.
func (m *FlowFieldManager) Regenerate(goalKey string, goalX, goalY float64) *FlowField {
	field := NewFlowField(m.minX, m.minY, m.width, m.height, m.cellSize)
	field.Generate(goalX, goalY)
	m.fields[goalKey] = field
	return field
}

// Remove discards the cached field for goalKey.
func (m *FlowFieldManager) Remove(goalKey string) {
	delete(m.fields, goalKey)
}

// Clear discards all cached fields.
func (m *FlowFieldManager) Clear() {
	m.fields = make(map[string]*FlowField)
}
