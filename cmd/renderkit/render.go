package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/engine"
)

func renderCmd() *cobra.Command {
	var (
		url      string
		showInfo bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one page to stdout",
		Long: `Render a single sample-site page through the full pipeline and
print the resulting document to stdout.

Examples:
  renderkit render --url=/
  renderkit render --url=/about --info`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(url, showInfo)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "/", "Page URL to render")
	cmd.Flags().BoolVar(&showInfo, "info", false, "Print render details to stderr")

	return cmd
}

func runRender(url string, showInfo bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	pages := sampleSite()
	p, ok := pages[url]
	if !ok {
		return fmt.Errorf("no page registered at %q", url)
	}

	result, err := eng.Render(context.Background(), engine.Options{
		Component: p.component,
		Props:     p.props,
		Layouts:   p.layouts,
		Template:  template,
		Context:   &component.Context{URL: url},
	})
	if err != nil {
		return err
	}

	fmt.Println(result.HTML)

	if showInfo {
		errorOut := os.Stderr
		fmt.Fprintf(errorOut, "engine: %s\n", result.RenderInfo.Engine)
		fmt.Fprintf(errorOut, "fromCache: %v\n", result.FromCache)
		fmt.Fprintf(errorOut, "total: %s (load %s, adapter %s)\n",
			result.Performance.Total, result.Performance.Load, result.Performance.Adapter)
		if result.OriginalSize > 0 {
			fmt.Fprintf(errorOut, "payload: %d -> %d bytes\n", result.OriginalSize, result.CompressedSize)
		}
	}
	return nil
}
