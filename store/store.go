package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/milk9111/gridnav/pathfinding"
	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store persists baked grids and benchmark history in a SQLite database.
type Store struct {
	db *gorm.DB
}

// GridGorm is one baked grid, keyed by scene name. Data holds a msgpack
// encoded BakedGrid.
type GridGorm struct {
	Scene     string    `gorm:"column:scene;primaryKey"`
	Data      []byte    `gorm:"column:data"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (GridGorm) TableName() string {
	return "grid"
}

// BenchRun is one recorded benchmark.
type BenchRun struct {
	ID        uint          `gorm:"column:id;primaryKey;autoIncrement"`
	Scene     string        `gorm:"column:scene;index"`
	Mode      string        `gorm:"column:mode"`
	Queries   int           `gorm:"column:queries"`
	Workers   int           `gorm:"column:workers"`
	Complete  int           `gorm:"column:complete"`
	NotFound  int           `gorm:"column:not_found"`
	Visited   int64         `gorm:"column:visited"`
	Ticks     int64         `gorm:"column:ticks"`
	Elapsed   time.Duration `gorm:"column:elapsed"`
	CreatedAt time.Time     `gorm:"column:created_at"`
}

func (BenchRun) TableName() string {
	return "bench_run"
}

// BakedGrid is the serialised form of a pathfinding.Grid.
type BakedGrid struct {
	OriginX     float64 `msgpack:"ox"`
	OriginY     float64 `msgpack:"oy"`
	Interval    float64 `msgpack:"interval"`
	Width       int     `msgpack:"w"`
	Height      int     `msgpack:"h"`
	ProbeRadius float64 `msgpack:"probe"`
	Walls       []byte  `msgpack:"walls"`
}

// Open opens or creates the database at dsn, e.g. a file path or
// "file::memory:".
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&GridGorm{}, &BenchRun{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}

// SaveGrid stores g under scene, replacing any previous bake.
func (s *Store) SaveGrid(scene string, g *pathfinding.Grid) error {
	data, err := msgpack.Marshal(Bake(g))
	if err != nil {
		return err
	}
	return s.db.Save(&GridGorm{Scene: scene, Data: data}).Error
}

// LoadGrid returns the grid baked for scene, or nil when there is none.
func (s *Store) LoadGrid(scene string) (*pathfinding.Grid, error) {
	row := new(GridGorm)
	err := s.db.Where("scene = ?", scene).First(row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	baked := new(BakedGrid)
	if err := msgpack.Unmarshal(row.Data, baked); err != nil {
		return nil, fmt.Errorf("store: decode grid %s: %w", scene, err)
	}
	return baked.Grid()
}

// DeleteGrid removes the bake for scene.
func (s *Store) DeleteGrid(scene string) error {
	return s.db.Where("scene = ?", scene).Delete(&GridGorm{}).Error
}

// RecordBench appends run to the history.
func (s *Store) RecordBench(run *BenchRun) error {
	return s.db.Create(run).Error
}

// BenchRuns returns the most recent runs, newest first. An empty scene
// matches every scene; limit <= 0 means no limit.
func (s *Store) BenchRuns(scene string, limit int) ([]BenchRun, error) {
	q := s.db.Order("id desc")
	if scene != "" {
		q = q.Where("scene = ?", scene)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []BenchRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Bake captures g as a BakedGrid with walls packed one bit per node.
func Bake(g *pathfinding.Grid) *BakedGrid {
	walls := g.Walls()
	packed := make([]byte, (len(walls)+7)/8)
	for i, w := range walls {
		if w {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	origin := g.Origin()
	return &BakedGrid{
		OriginX:     origin.X,
		OriginY:     origin.Y,
		Interval:    g.Interval(),
		Width:       g.Width(),
		Height:      g.Height(),
		ProbeRadius: g.ProbeRadius(),
		Walls:       packed,
	}
}

// Grid rebuilds the grid described by b.
func (b *BakedGrid) Grid() (*pathfinding.Grid, error) {
	n := b.Width * b.Height
	if b.Width < 1 || b.Height < 1 || len(b.Walls) != (n+7)/8 {
		return nil, fmt.Errorf("store: baked grid %dx%d has %d wall bytes", b.Width, b.Height, len(b.Walls))
	}
	walls := make([]bool, n)
	for i := range walls {
		walls[i] = b.Walls[i/8]&(1<<(i%8)) != 0
	}
	return pathfinding.RestoreGrid(pathfinding.Point{X: b.OriginX, Y: b.OriginY}, b.Interval, b.Width, b.Height, walls, b.ProbeRadius)
}
