package sim

import "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

type TileView struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Ground      farm.Ground `json:"ground"`
	Water       float64     `json:"water"`
	Entity      farm.Entity `json:"entity,omitempty"`
	Harvestable bool        `json:"harvestable"`
}

type Snapshot struct {
	Size      int                 `json:"size"`
	Position  farm.Position       `json:"position"`
	Tick      int64               `json:"tick"`
	Tiles     []TileView          `json:"tiles"`
	Harvested map[farm.Entity]int `json:"harvested"`
}

func (f *Farm) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := Snapshot{
		Size:      len(f.tiles),
		Position:  f.pos,
		Tick:      f.tick,
		Tiles:     make([]TileView, 0, len(f.tiles)*len(f.tiles)),
		Harvested: make(map[farm.Entity]int, len(f.harvested)),
	}
	for y, row := range f.tiles {
		for x, t := range row {
			out.Tiles = append(out.Tiles, TileView{
				X:           x,
				Y:           y,
				Ground:      t.Ground,
				Water:       t.Water,
				Entity:      t.Entity,
				Harvestable: f.ripe(t),
			})
		}
	}
	for k, v := range f.harvested {
		out.Harvested[k] = v
	}
	return out
}

func (s Snapshot) TileAt(x, y int) (TileView, bool) {
	if x < 0 || y < 0 || x >= s.Size || y >= s.Size {
		return TileView{}, false
	}
	return s.Tiles[y*s.Size+x], true
}

func (f *Farm) SnapshotAny() any {
	return f.Snapshot()
}
