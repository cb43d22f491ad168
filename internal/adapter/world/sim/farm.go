package sim

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

var (
	ErrCompanionQuery = errors.New("companion query failed")
	ErrWrongGround    = errors.New("entity cannot grow on this ground")
)

type Config struct {
	Size               int
	Seed               uint64
	CompanionRate      float64
	CompanionFaultRate float64
	WaterPerUse        float64
	WaterPerPlant      float64
	InitialWater       float64
	GrowTicks          map[farm.Entity]int
}

func DefaultConfig() Config {
	return Config{
		Size:               8,
		Seed:               1,
		CompanionRate:      0.5,
		CompanionFaultRate: 0,
		WaterPerUse:        0.25,
		WaterPerPlant:      0.05,
		InitialWater:       0.5,
		GrowTicks: map[farm.Entity]int{
			farm.EntityGrass:     1,
			farm.EntityBush:      4,
			farm.EntityCarrot:    6,
			farm.EntityTree:      12,
			farm.EntityPumpkin:   10,
			farm.EntitySunflower: 8,
		},
	}
}

type Tile struct {
	Ground    farm.Ground
	Water     float64
	Entity    farm.Entity
	PlantedAt int64
}

// Farm is an in-memory square world driven through ports.FarmHost. Moving off
// an edge wraps to the opposite side.
type Farm struct {
	mu        sync.Mutex
	cfg       Config
	rng       *rand.Rand
	tiles     [][]Tile
	pos       farm.Position
	tick      int64
	harvested map[farm.Entity]int
}

var _ ports.FarmHost = (*Farm)(nil)

func NewFarm(cfg Config) *Farm {
	def := DefaultConfig()
	if cfg.WaterPerUse <= 0 {
		cfg.WaterPerUse = def.WaterPerUse
	}
	if cfg.WaterPerPlant < 0 {
		cfg.WaterPerPlant = 0
	}
	if cfg.GrowTicks == nil {
		cfg.GrowTicks = def.GrowTicks
	}
	f := &Farm{
		cfg:       cfg,
		rng:       rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		harvested: map[farm.Entity]int{},
	}
	size := max(cfg.Size, 0)
	f.tiles = make([][]Tile, size)
	for y := range f.tiles {
		f.tiles[y] = make([]Tile, size)
		for x := range f.tiles[y] {
			f.tiles[y][x] = Tile{Ground: farm.GroundGrassland, Water: cfg.InitialWater}
		}
	}
	return f
}

func (f *Farm) Position(context.Context) (farm.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, nil
}

func (f *Farm) WorldSize(context.Context) (int, error) {
	if f.cfg.Size <= 0 {
		return 0, ports.ErrNotFound
	}
	return f.cfg.Size, nil
}

func (f *Farm) WaterLevel(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.here()
	if err != nil {
		return 0, err
	}
	return t.Water, nil
}

func (f *Farm) GroundType(context.Context) (farm.Ground, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.here()
	if err != nil {
		return "", err
	}
	return t.Ground, nil
}

func (f *Farm) CanHarvest(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.here()
	if err != nil {
		return false, err
	}
	return f.ripe(*t), nil
}

func (f *Farm) Move(_ context.Context, dir farm.Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tiles) == 0 {
		return ports.ErrUnavailable
	}
	dx, dy := dir.Delta()
	n := len(f.tiles)
	f.pos.X = (f.pos.X + dx + n) % n
	f.pos.Y = (f.pos.Y + dy + n) % n
	f.tick++
	return nil
}

func (f *Farm) UseItem(_ context.Context, item farm.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item != farm.ItemWater {
		return ports.ErrUnavailable
	}
	t, err := f.here()
	if err != nil {
		return err
	}
	t.Water = min(1, t.Water+f.cfg.WaterPerUse)
	f.tick++
	return nil
}

func (f *Farm) Till(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.here()
	if err != nil {
		return err
	}
	if t.Ground == farm.GroundSoil {
		t.Ground = farm.GroundGrassland
	} else {
		t.Ground = farm.GroundSoil
	}
	t.Entity = ""
	f.tick++
	return nil
}

func (f *Farm) Harvest(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.here()
	if err != nil {
		return err
	}
	if f.ripe(*t) {
		f.harvested[t.Entity]++
	}
	t.Entity = ""
	f.tick++
	return nil
}

// Plant replaces whatever grows on the tile. Crops other than grass and bush
// need soil.
func (f *Farm) Plant(_ context.Context, entity farm.Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.here()
	if err != nil {
		return err
	}
	if t.Ground != farm.GroundSoil && entity != farm.EntityGrass && entity != farm.EntityBush {
		return ErrWrongGround
	}
	t.Entity = entity
	t.PlantedAt = f.tick
	t.Water = max(0, t.Water-f.cfg.WaterPerPlant)
	f.tick++
	return nil
}

// Companion suggests a neighbour plant for the crop under the agent.
func (f *Farm) Companion(context.Context) (farm.Companion, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cfg.CompanionFaultRate > 0 && f.rng.Float64() < f.cfg.CompanionFaultRate {
		return farm.Companion{}, false, ErrCompanionQuery
	}
	t, err := f.here()
	if err != nil {
		return farm.Companion{}, false, err
	}
	if t.Entity == "" || f.rng.Float64() >= f.cfg.CompanionRate {
		return farm.Companion{}, false, nil
	}
	return farm.Companion{Plant: companionFor(t.Entity), At: f.randomPosition()}, true, nil
}

func (f *Farm) Random() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Float64()
}

// RandomPosition samples a uniformly random cell.
func (f *Farm) RandomPosition() farm.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.randomPosition()
}

func (f *Farm) randomPosition() farm.Position {
	n := len(f.tiles)
	if n == 0 {
		return farm.Position{}
	}
	return farm.Position{X: int(f.rng.Float64() * float64(n)), Y: int(f.rng.Float64() * float64(n))}
}

func (f *Farm) here() (*Tile, error) {
	if len(f.tiles) == 0 {
		return nil, ports.ErrUnavailable
	}
	return &f.tiles[f.pos.Y][f.pos.X], nil
}

func (f *Farm) ripe(t Tile) bool {
	if t.Entity == "" {
		return false
	}
	grow, ok := f.cfg.GrowTicks[t.Entity]
	if !ok {
		grow = 1
	}
	return f.tick-t.PlantedAt >= int64(grow)
}

func companionFor(e farm.Entity) farm.Entity {
	switch e {
	case farm.EntityGrass:
		return farm.EntityBush
	case farm.EntityBush:
		return farm.EntityTree
	case farm.EntityTree:
		return farm.EntityCarrot
	case farm.EntityCarrot:
		return farm.EntityGrass
	default:
		return farm.EntityBush
	}
}
