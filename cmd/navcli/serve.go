package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/milk9111/gridnav/pathapi"
	"github.com/milk9111/gridnav/scene"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve path queries over HTTP",
		Long: `Serves path queries over HTTP:

  GET /health
  GET /scenes
  GET /scenes/{name}
  GET /scenes/{name}/path?from=x,y&to=x,y&mode=basic|region
  GET /metrics            (with --metrics prometheus)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context(), addr, watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", true, "rebuild scenes when files under --scene-dir change")
	return cmd
}

// sceneSource resolves scene names for the HTTP controller.
func (c *cli) sceneSource(name string) (*scene.Scene, error) {
	sc, err := c.loadScene(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", pathapi.ErrUnknownScene, name)
	}
	return sc, err
}

func (c *cli) newRouter() (*gin.Engine, *pathapi.Controller) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("navcli"))

	ctrl := pathapi.NewController(c.sceneSource, c.logger, c.finderOptions()...)
	ctrl.Register(router)
	if h := c.telemetry.Handler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}
	return router, ctrl
}

func (c *cli) serve(ctx context.Context, addr string, watch bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, ctrl := c.newRouter()

	if watch {
		if info, err := os.Stat(scene.Dir); err == nil && info.IsDir() {
			w, err := scene.NewWatcher(scene.Dir)
			if err != nil {
				return err
			}
			defer w.Close()
			go c.invalidateOnChange(w, ctrl)
		}
	}

	srv := &http.Server{Addr: addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("navcli: serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// invalidateOnChange drops cached builds of changed scenes. A watch error
// may have lost events, so it drops every build.
func (c *cli) invalidateOnChange(w *scene.Watcher, ctrl *pathapi.Controller) {
	for {
		select {
		case change, ok := <-w.Changes:
			if !ok {
				return
			}
			for _, name := range change.Scenes {
				ctrl.Invalidate(name)
			}
			c.logger.Info("navcli: scene changed", "file", change.File, "scenes", change.Scenes)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			ctrl.InvalidateAll()
			c.logger.Warn("navcli: watch error", "error", err)
		}
	}
}
