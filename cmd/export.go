package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/epub"
	"github.com/brogergvhs/noveld/internal/export"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/ralevon"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var (
	// source
	flagBookURL  string
	flagLoginURL string
	flagAuthor   string
	flagRange    string
	flagList     string

	// runtime
	flagOutput       string
	flagTimeout      int
	flagDryRun       bool
	flagNoImages     bool
	flagImageWorkers int
	flagUserAgent    string

	// browser
	flagShowBrowser bool
	flagBrowserBin  string
)

// dotenvPath is read before credentials are parsed.
var dotenvPath = ".env"

type browserSession interface {
	providers.Page
	Cookies(ctx context.Context) ([]*http.Cookie, error)
	Close() error
}

// launchBrowser is swapped in tests so no Chromium is started.
var launchBrowser = func(ctx context.Context, opts browser.Options) (browserSession, error) {
	s, err := browser.Launch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Log in, scrape every volume of the book and write one EPUB per volume. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runExport,
	}

	exportCmd.Flags().StringVar(&flagBookURL, "book-url", "", "book page listing the volumes")
	exportCmd.Flags().StringVar(&flagLoginURL, "login-url", "", "login page URL")
	exportCmd.Flags().StringVar(&flagAuthor, "author", "", "author written into every EPUB")
	exportCmd.Flags().StringVar(&flagRange, "range", "", "export range of volumes by index (e.g. 2-4)")
	exportCmd.Flags().StringVar(&flagList, "list", "", "export specific volume indices (e.g. 1,3,5)")

	exportCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for EPUB files")
	exportCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "seconds allowed for each browser operation")
	exportCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list volumes and episodes, write nothing")
	exportCmd.Flags().BoolVar(&flagNoImages, "no-images", false, "keep inline images as remote links")
	exportCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 0, "parallel image downloads per volume")
	exportCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	exportCmd.Flags().BoolVar(&flagShowBrowser, "show-browser", false, "run Chromium with a visible window")
	exportCmd.Flags().StringVar(&flagBrowserBin, "browser-bin", "", "path to a Chromium binary instead of the managed one")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	creds, err := config.LoadCredentials(dotenvPath)
	if err != nil {
		return err
	}

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:   flagIgnoreConfig,
		Debug:          flagDebug,
		Output:         flagOutput,
		LoginURL:       flagLoginURL,
		BookURL:        flagBookURL,
		Author:         flagAuthor,
		TimeoutSeconds: flagTimeout,
		ShowBrowser:    flagShowBrowser,
		BrowserBin:     flagBrowserBin,
		NoImages:       flagNoImages,
		ImageWorkers:   flagImageWorkers,
		UserAgent:      flagUserAgent,
		DefaultRange:   flagRange,
		DefaultList:    flagList,
	})
	if err != nil {
		return err
	}

	pm := ui.NewProgressManager(os.Stdout)
	defer pm.Close()
	logSvc := ui.NewLoggerTo(pm, cfg.Debug, ui.IsTerminal(os.Stdout))

	logSvc.Debugf("config: %s", strings.TrimSpace(usedPath))
	logSvc.Debugf("%s", creds)

	created, err := util.EnsureDir(cfg.Output)
	if err != nil {
		return err
	}
	if created {
		logSvc.Infof("Carpeta %s/ creada.", strings.TrimRight(cfg.Output, `/\`))
		// Runs after the lock is released, so only a folder that got no
		// EPUB is removed.
		defer func() {
			if util.RemoveIfEmpty(cfg.Output) {
				logSvc.Debugf("removed empty output folder %s", cfg.Output)
			}
		}()
	}

	lock, err := util.LockOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logSvc.Debugf("unlock %s: %v", cfg.Output, err)
		}
	}()

	for _, p := range util.CleanupUnfinishedTempFolders(cfg.Output) {
		logSvc.Debugf("removed leftover folder %s", p)
	}

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	userAgent := util.PickUserAgent(cfg.UserAgent)

	sess, err := launchBrowser(ctx, browser.Options{
		ShowBrowser: cfg.ShowBrowser,
		Bin:         cfg.BrowserBin,
		Timeout:     cfg.Timeout(),
		UserAgent:   userAgent,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}
	defer func() {
		logSvc.Infof("Cerrando el navegador...")
		if err := sess.Close(); err != nil {
			logSvc.Debugf("close browser: %v", err)
		}
	}()

	site := ralevon.NewScraper(sess, cfg.LoginURL, ralevon.DefaultSelectors(), logSvc)

	logSvc.Infof("Navegando a la página de inicio de sesión...")
	if err := site.Login(ctx, creds.Email, creds.Password); err != nil {
		return fmt.Errorf("inicio de sesión: %w", err)
	}
	logSvc.Infof("Inicio de sesión exitoso. Navegando a la página del libro...")

	cookies, err := sess.Cookies(ctx)
	if err != nil {
		logSvc.Warnf("No se pudieron leer las cookies de la sesión: %v", err)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     cfg.Timeout(),
		UserAgent:   userAgent,
		CookieURL:   cfg.BookURL,
		Cookies:     cookies,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	stats := &ui.Stats{}
	dl := downloader.New(client, logSvc)
	dl.CountBytes(func(delta int64) { stats.TotalBytes.Add(delta) })
	asm := epub.NewAssembler(dl, !cfg.NoImages, cfg.ImageWorkers, logSvc)

	ex := export.New(site, asm, export.Options{
		OutputDir: cfg.Output,
		Author:    cfg.Author,
		Language:  cfg.Language,
		Range:     cfg.DefaultRange,
		List:      cfg.DefaultList,
		DryRun:    flagDryRun,
	}, logSvc, pm, stats)

	start := time.Now()
	report, runErr := ex.Run(ctx, cfg.BookURL)
	pm.Close()

	if len(report.Volumes) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderSummary(report.SummaryRows()))
		fmt.Printf("EPUBs:     %d/%d\n", len(report.Succeeded())-dryRunCount(report), len(report.Volumes))
		fmt.Printf("Capítulos: %d (%d omitidos)\n", stats.TotalChapters.Load(), stats.SkippedEpisodes.Load())
		fmt.Printf("Imágenes:  %d (%s)\n", stats.TotalImages.Load(), util.Human(stats.TotalBytes.Load()))
		fmt.Printf("Tiempo:    %s\n", time.Since(start).Round(time.Second))
	}

	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("exportación interrumpida: %w", runErr)
	}

	return runErr
}

func dryRunCount(r export.RunReport) int {
	n := 0
	for _, v := range r.Succeeded() {
		if v.DryRun {
			n++
		}
	}
	return n
}
