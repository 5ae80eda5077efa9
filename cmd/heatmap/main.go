// Command heatmap renders the trader heatmap of the newest tagging export
// in the downloads folder, or of an explicit file, into PDF and XLSX files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/okian/traderheat/internal/adapters/source"
	app "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/config"
	"github.com/okian/traderheat/internal/domain/pivot"
	"github.com/okian/traderheat/pkg/logger"
)

const outputPermission = 0o600

func main() {
	var (
		file    = flag.String("file", "", "Render this file instead of the newest export")
		dir     = flag.String("dir", "", "Folder searched for exports (default: downloads_dir)")
		pattern = flag.String("pattern", "", "Glob matched against export names (default: file_pattern)")
		out     = flag.String("out", "", "Output folder (default: output_dir)")
		all     = flag.Bool("all", false, "Also render the total view")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	if *dir != "" {
		cfg.DownloadsDir = *dir
	}
	if *pattern != "" {
		cfg.FilePattern = *pattern
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	cfg.Mode = config.ModeDiscover

	var src source.Source = source.NewLatest(cfg.DownloadsDir, cfg.FilePattern, cfg.MaxUploadBytes)
	if *file != "" {
		src = source.NewFile(*file, cfg.MaxUploadBytes)
	}

	views := []pivot.View{pivot.InPlay}
	if *all {
		views = append(views, pivot.Total)
	}

	written, err := run(ctx, cfg, src, views)
	if err != nil {
		logger.Get().Fatal(ctx, "heatmap failed", logger.Error(err))
	}
	for _, p := range written {
		fmt.Println(p)
	}
}

// run generates the report and writes one PDF per rendered view plus the
// workbook. It returns the written paths.
func run(ctx context.Context, cfg *config.Config, src source.Source, views []pivot.View) ([]string, error) {
	log := logger.Get()

	opts, err := app.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := app.New(append(opts, app.WithLogger(log.Named("service")))...)
	if err != nil {
		return nil, err
	}

	rep, err := svc.Generate(ctx, src, views...)
	if err != nil {
		return nil, err
	}
	for _, msg := range rep.Messages() {
		log.Info(ctx, msg)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	var written []string
	for _, vr := range rep.Views {
		if !vr.Rendered {
			continue
		}
		b, err := svc.PDF(ctx, rep, vr.View)
		if err != nil {
			return written, err
		}
		p := filepath.Join(cfg.OutputDir, "heatmap_"+string(vr.View)+".pdf")
		if err := os.WriteFile(p, b, outputPermission); err != nil {
			return written, err
		}
		written = append(written, p)
	}

	if len(rep.Sheets()) > 0 {
		b, err := svc.XLSX(ctx, rep)
		if err != nil {
			return written, err
		}
		p := filepath.Join(cfg.OutputDir, "heatmap.xlsx")
		if err := os.WriteFile(p, b, outputPermission); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
