package farm

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Delta is the unit step a move in d applies. North grows y, East grows x.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

type Ground string

const (
	GroundSoil      Ground = "soil"
	GroundGrassland Ground = "grassland"
)

type Entity string

const (
	EntitySunflower Entity = "sunflower"
	EntityPumpkin   Entity = "pumpkin"
	EntityTree      Entity = "tree"
	EntityCarrot    Entity = "carrot"
	EntityGrass     Entity = "grass"
	EntityBush      Entity = "bush"
)

type Item string

const (
	ItemWater Item = "water"
)

type Companion struct {
	Plant Entity   `json:"plant"`
	At    Position `json:"at"`
}
