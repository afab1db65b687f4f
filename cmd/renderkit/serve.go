package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shuliangfu/render-sub000/internal/dev"
	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/engine"
	"github.com/shuliangfu/render-sub000/pkg/middleware"
	"github.com/shuliangfu/render-sub000/pkg/recovery"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		devMode bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sample site",
		Long: `Serve the built-in sample site through the render pipeline.

Exposes /healthz for liveness checks and /metrics for Prometheus.
With --dev, template changes reload connected browsers.

Examples:
  renderkit serve
  renderkit serve --port=8080
  renderkit serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, devMode)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default from renderkit.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from renderkit.json)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Enable watch and browser reload")

	return cmd
}

func runServe(port int, host string, devMode bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	template, err := loadTemplate(cfg)
	if err != nil {
		return err
	}

	renderer := middleware.OpenTelemetry(middleware.Prometheus(eng))
	pages := sampleSite()

	var reload *dev.ReloadServer
	if devMode {
		reload = dev.NewReloadServer()
		defer reload.Close()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	if reload != nil {
		r.Get(dev.ReloadPath, reload.HandleWebSocket)
	}

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		p, ok := pages[req.URL.Path]
		if !ok {
			http.NotFound(w, req)
			return
		}

		result, err := renderer.Render(req.Context(), engine.Options{
			Component: p.component,
			Props:     p.props,
			Layouts:   p.layouts,
			Template:  template,
			Context: &component.Context{
				URL:    req.URL.Path,
				Params: queryParams(req),
			},
		})
		if err != nil {
			logger.Error("render failed", slog.String("url", req.URL.Path), slog.Any("error", err))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(recovery.StaticErrorDocument(eng.AdapterName(), err)))
			return
		}

		html := result.HTML
		if reload != nil {
			html = strings.Replace(html, "</body>", dev.ClientScript+"</body>", 1)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: r}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if devMode {
		paths := cfg.Dev.Watch
		if cfg.Template.Path != "" {
			paths = append(paths, cfg.Template.Path)
		}
		watcher := dev.NewWatcher(paths, 100*time.Millisecond)
		watcher.OnChange(func(c dev.Change) {
			success("Changed: %s", c.Path)
			reload.NotifyReload(c.Path)
		})
		go watcher.Start(ctx)
		defer watcher.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n  Shutting down...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	printBanner()
	info("Serving on http://%s", addr)
	if devMode {
		info("Dev mode: watching %v", cfg.Dev.Watch)
	}
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	success("Stopped")
	return nil
}

// queryParams flattens the query string into the render params map.
func queryParams(req *http.Request) map[string]string {
	params := map[string]string{}
	for k, vs := range req.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}
