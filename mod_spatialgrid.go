package arena

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type AABBComponent struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (a AABBComponent) Overlaps(b AABBComponent) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < b.Min[i] || b.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}

func (a AABBComponent) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// SpatialHashGrid buckets bounded colliders by the cells their AABB touches.
type SpatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]EntityId
	// Bodies bigger than this many cells per axis go to the oversized list.
	maxSpan  int
	oversize []EntityId
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	if cellSize <= 0 {
		cellSize = 2
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]EntityId),
		maxSpan:  64,
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
	grid.oversize = grid.oversize[:0]
}

func (grid *SpatialHashGrid) Insert(id EntityId, aabb AABBComponent) {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	if maxX-minX > grid.maxSpan || maxY-minY > grid.maxSpan || maxZ-minZ > grid.maxSpan {
		grid.oversize = append(grid.oversize, id)
		return
	}

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				key := grid.hashKey(x, y, z)
				grid.cells[key] = append(grid.cells[key], id)
			}
		}
	}
}

// QueryAABB returns broadphase candidates: every id sharing a cell with aabb, each once.
func (grid *SpatialHashGrid) QueryAABB(aabb AABBComponent) []EntityId {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	unique := make(map[EntityId]struct{})
	var results []EntityId
	add := func(id EntityId) {
		if _, ok := unique[id]; !ok {
			unique[id] = struct{}{}
			results = append(results, id)
		}
	}

	for _, id := range grid.oversize {
		add(id)
	}
	if maxX-minX > grid.maxSpan || maxY-minY > grid.maxSpan || maxZ-minZ > grid.maxSpan {
		for _, ids := range grid.cells {
			for _, id := range ids {
				add(id)
			}
		}
		return results
	}

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				for _, id := range grid.cells[grid.hashKey(x, y, z)] {
					add(id)
				}
			}
		}
	}
	return results
}

func (grid *SpatialHashGrid) QueryRadius(center mgl32.Vec3, radius float32) []EntityId {
	r := mgl32.Vec3{radius, radius, radius}
	return grid.QueryAABB(AABBComponent{Min: center.Sub(r), Max: center.Add(r)})
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}

func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}
