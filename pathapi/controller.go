// Package pathapi serves path queries over HTTP.
package pathapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/milk9111/gridnav/pathfinding"
	"github.com/milk9111/gridnav/scene"
)

// SceneSource builds the named scene.
type SceneSource func(name string) (*scene.Scene, error)

// ErrUnknownScene is returned by a SceneSource for names it cannot resolve.
var ErrUnknownScene = errors.New("pathapi: unknown scene")

// Controller answers path queries against a cache of built scenes. Every
// request gets its own Finder; the grids are shared.
type Controller struct {
	source SceneSource
	log    *slog.Logger
	opts   []pathfinding.Option

	mu     sync.Mutex
	scenes map[string]*scene.Scene
}

func NewController(source SceneSource, logger *slog.Logger, opts ...pathfinding.Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		source: source,
		log:    logger,
		opts:   opts,
		scenes: make(map[string]*scene.Scene),
	}
}

// Register mounts the routes on r.
func (c *Controller) Register(r gin.IRouter) {
	r.GET("/health", c.health)
	r.GET("/scenes", c.listScenes)
	r.GET("/scenes/:name", c.describeScene)
	r.GET("/scenes/:name/path", c.queryPath)
}

// Invalidate drops the cached build of name so the next request rebuilds it.
func (c *Controller) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scenes, name)
}

// InvalidateAll drops every cached build.
func (c *Controller) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.scenes)
}

func (c *Controller) scene(name string) (*scene.Scene, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sc, ok := c.scenes[name]; ok {
		return sc, nil
	}
	sc, err := c.source(name)
	if err != nil {
		return nil, err
	}
	c.scenes[name] = sc
	return sc, nil
}

// SceneInfo describes a built scene.
type SceneInfo struct {
	Name     string   `json:"name"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Interval float64  `json:"interval"`
	Walls    int      `json:"walls"`
	Regions  []string `json:"regions,omitempty"`
}

// PathRsp is the answer to a path query.
type PathRsp struct {
	State     string       `json:"state"`
	Mode      string       `json:"mode"`
	Cost      int          `json:"cost"`
	Visited   int          `json:"visited"`
	Ticks     int          `json:"ticks"`
	ElapsedMs float64      `json:"elapsed_ms"`
	Regions   []string     `json:"regions,omitempty"`
	Path      [][2]float64 `json:"path,omitempty"`
}

type errorRsp struct {
	Error string `json:"error"`
}

func (c *Controller) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *Controller) listScenes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"scenes": scene.List()})
}

func (c *Controller) describeScene(ctx *gin.Context) {
	sc, ok := c.sceneOrAbort(ctx)
	if !ok {
		return
	}
	info := SceneInfo{
		Name:     ctx.Param("name"),
		Width:    sc.Grid.Width(),
		Height:   sc.Grid.Height(),
		Interval: sc.Grid.Interval(),
		Walls:    sc.Grid.WallCount(),
	}
	if sc.Regions != nil {
		for i := 0; i < sc.Regions.Len(); i++ {
			info.Regions = append(info.Regions, sc.Regions.Region(i).Name)
		}
	}
	ctx.JSON(http.StatusOK, info)
}

func (c *Controller) queryPath(ctx *gin.Context) {
	from, err := ParsePoint(ctx.Query("from"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorRsp{Error: "from: " + err.Error()})
		return
	}
	to, err := ParsePoint(ctx.Query("to"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorRsp{Error: "to: " + err.Error()})
		return
	}
	mode, err := ParseMode(ctx.DefaultQuery("mode", "basic"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorRsp{Error: err.Error()})
		return
	}

	sc, ok := c.sceneOrAbort(ctx)
	if !ok {
		return
	}
	opts := append([]pathfinding.Option{pathfinding.WithLogger(c.log)}, c.opts...)
	f, err := sc.NewFinder(opts...)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorRsp{Error: err.Error()})
		return
	}

	if err := f.Start(mode, from, to); err != nil {
		ctx.JSON(statusFor(err), errorRsp{Error: err.Error()})
		return
	}
	r, err := f.Run(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, errorRsp{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, NewPathRsp(r))
}

func (c *Controller) sceneOrAbort(ctx *gin.Context) (*scene.Scene, bool) {
	name := ctx.Param("name")
	sc, err := c.scene(name)
	if err != nil {
		c.log.Error("pathapi: build scene", "scene", name, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownScene) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, errorRsp{Error: err.Error()})
		return nil, false
	}
	return sc, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pathfinding.ErrBounds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pathfinding.ErrConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewPathRsp converts a finished search into its wire form.
func NewPathRsp(r pathfinding.Result) PathRsp {
	rsp := PathRsp{
		State:     r.State.String(),
		Mode:      r.Mode.String(),
		Cost:      r.Cost,
		Visited:   r.Visited,
		Ticks:     r.Ticks,
		ElapsedMs: float64(r.Elapsed) / float64(time.Millisecond),
		Regions:   r.Regions,
	}
	for _, n := range r.Path {
		rsp.Path = append(rsp.Path, [2]float64{n.Pos.X, n.Pos.Y})
	}
	return rsp
}

// ParsePoint reads "x,y".
func ParsePoint(s string) (pathfinding.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return pathfinding.Point{}, fmt.Errorf("point must be \"x,y\", got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return pathfinding.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return pathfinding.Point{}, err
	}
	return pathfinding.Point{X: x, Y: y}, nil
}

// ParseMode maps "basic" and "region" to their Mode.
func ParseMode(s string) (pathfinding.Mode, error) {
	switch strings.ToLower(s) {
	case "basic":
		return pathfinding.ModeBasic, nil
	case "region":
		return pathfinding.ModeRegion, nil
	}
	return pathfinding.ModeNone, fmt.Errorf("unknown mode %q", s)
}
