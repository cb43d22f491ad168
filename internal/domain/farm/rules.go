package farm

import "iter"

const WaterThreshold = 0.10

func NeedsWater(level float64) bool {
	return level < WaterThreshold
}

// EntityForSpot returns the default crop for a column. First match wins, y is ignored.
func EntityForSpot(x, _ int) Entity {
	switch {
	case x > 0 && x%4 == 0:
		return EntitySunflower
	case x > 0 && (x%5 == 0 || x == 1):
		return EntityPumpkin
	case x > 0 && x%3 == 0:
		return EntityTree
	case x > 0 && x%2 == 0:
		return EntityCarrot
	default:
		return EntityGrass
	}
}

// CompanionDue reports whether the companion override applies to a cell.
// A non-positive interval disables it.
func CompanionDue(x, y, interval int) bool {
	if interval <= 0 {
		return false
	}
	return (x+y)%interval == 0
}

func SerpentineColumns(row, size int) []int {
	if size <= 0 {
		return nil
	}
	cols := make([]int, size)
	for i := range cols {
		if row%2 == 0 {
			cols[i] = i
		} else {
			cols[i] = size - 1 - i
		}
	}
	return cols
}

// SerpentineCells yields every cell of a size x size grid, rows ascending,
// even rows left to right and odd rows right to left.
func SerpentineCells(size int) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for row := 0; row < size; row++ {
			for _, col := range SerpentineColumns(row, size) {
				if !yield(Position{X: col, Y: row}) {
					return
				}
			}
		}
	}
}
