// holokernel - holographic memory and entity simulation kernel
//
// The kernel keeps a fixed-size associative memory of hashed symbol vectors
// and a bounded population of entities that wake, sleep, reproduce and are
// collected by a deterministic update rule.
//
// Modes:
//   - shell: interactive REPL (default)
//   - serve: HTTP/WebSocket API with the cadence loop running
//   - monitor: full-screen live view
//   - headless: run a fixed number of update passes and print the result
//
// With -remote the binary instead inspects a kernel served elsewhere.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/api"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/client"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/export"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/help"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/monitor"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/render"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/shell"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/spinner"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "Config file path (default: holokernel.yaml)")
	initConfig := flag.Bool("init", false, "Initialize default config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	mode := flag.String("mode", "shell", "Run mode: shell, serve, monitor or headless")
	updates := flag.Int("updates", 100, "Update passes to run in headless mode (0 runs until interrupted)")
	envPath := flag.String("env", "", "Path to a .env file (default: ./.env)")
	logPath := flag.String("log", "", "Write kernel log lines to this file instead of stderr")
	remote := flag.String("remote", "", "Inspect a kernel served at this URL, running -updates passes on it first")
	flag.Parse()

	if *showVersion {
		fmt.Printf("holokernel %s\n", version)
		os.Exit(0)
	}

	if *remote != "" {
		if err := runRemote(context.Background(), *remote, *updates); err != nil {
			fail(err)
		}
		os.Exit(0)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	if *initConfig {
		if err := config.InitConfig(cfgPath); err != nil {
			fail(err)
		}
		fmt.Printf("Config initialized at: %s\n", cfgPath)
		fmt.Println("Edit this file to change capacities, vocabulary and boot tasks.")
		os.Exit(0)
	}

	if *envPath != "" {
		config.LoadEnv(*envPath)
	} else {
		config.LoadEnv()
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fail(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fail(err)
	}

	logger, closeLog, err := openLogger(*logPath, *mode)
	if err != nil {
		fail(err)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if *mode != "monitor" {
		help.NewRenderer(os.Stdout).RenderBanner(version)
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Printf("Config: %s\n", cfgPath)
		} else {
			fmt.Printf("Config: (using defaults, run -init to create)\n")
		}
	}

	k := host.New(cfg, host.WithLogger(logger))
	rep, err := k.Boot()
	if err != nil {
		fail(err)
	}
	if *mode != "monitor" {
		fmt.Printf("Generation %s: %d symbols, %d entities (%d active), %d task assignments\n\n",
			rep.Generation, rep.Symbols, rep.Seeds, rep.Active, rep.Tasks)
	}

	switch *mode {
	case "shell":
		err = runShell(ctx, k, cfg)
	case "serve":
		err = runServer(ctx, k, cfg)
	case "monitor":
		err = monitor.Run(ctx, k, monitor.Options{Title: "holokernel " + version})
	case "headless":
		err = runHeadless(ctx, k, *updates)
	default:
		err = errors.CommandInvalidArg(*mode, "shell, serve, monitor or headless").
			WithContext("flag", "-mode")
	}
	if err != nil && err != context.Canceled {
		fail(err)
	}
}

func runShell(ctx context.Context, k *host.Host, cfg *config.Config) error {
	sh, err := shell.New(k, shell.Config{
		HistoryFile: cfg.Shell.HistoryFile,
		ExportDir:   cfg.Export.Path,
		Version:     version,
	})
	if err != nil {
		return err
	}
	if err := sh.Run(ctx); err != nil {
		return err
	}
	fmt.Println("Goodbye!")
	return nil
}

func runServer(ctx context.Context, k *host.Host, cfg *config.Config) error {
	server := api.NewServer(api.ServerConfigFrom(cfg.Server))
	server.SetKernel(k)
	hub := api.NewHub()
	go hub.Run()
	defer hub.Stop()

	detach := api.Mount(server.Router(), k, hub)
	defer detach()

	if err := server.Start(); err != nil {
		return err
	}
	fmt.Printf("Serving on http://%s (websocket /ws)\n", server.Address())

	loopErr := make(chan error, 1)
	go func() { loopErr <- k.Run(ctx) }()

	select {
	case <-ctx.Done():
	case err := <-loopErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runHeadless(ctx context.Context, k *host.Host, n int) error {
	if n < 0 {
		return errors.ValidationOutOfRange("updates", n, 0, "unbounded")
	}
	if n == 0 {
		if err := k.Run(ctx); err != nil {
			return err
		}
	} else {
		cfg := spinner.DefaultProgressConfig()
		cfg.Total = n
		bar := spinner.NewProgressWithConfig(cfg)
		bar.Start()
		reports, err := k.RunUpdates(ctx, n, func(done int) {
			snap := k.Snapshot()
			bar.Observe(done, snap.Tick, snap.Live)
		})
		if err != nil {
			bar.Fail(fmt.Sprintf("interrupted after %d of %d passes", len(reports), n))
		} else {
			bar.Complete("")
		}
	}

	snap := k.Snapshot()
	if err := render.NewPanel(os.Stdout).Render(snap); err != nil {
		return err
	}
	d := export.ComputeDigest(k.Config(), snap)
	fmt.Printf("digest %s\n", d.Hash)
	return nil
}

func runRemote(ctx context.Context, url string, n int) error {
	c := client.NewClient(url)
	h, err := c.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Remote kernel %s generation %s\n", url, h.Generation)

	if n > 0 {
		res, err := c.Update(ctx, n)
		if err != nil {
			return err
		}
		fmt.Printf("Ran %d update passes\n", len(res.Reports))
	}

	snap, err := c.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := render.NewPanel(os.Stdout).Render(*snap); err != nil {
		return err
	}
	d, err := c.Digest(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("digest %s\n", d.Hash)
	return nil
}

// openLogger picks where kernel log lines go. The monitor owns the screen, so
// without -log its lines are dropped; its event pane shows the same records.
func openLogger(path, mode string) (*log.Logger, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			code := errors.ErrIOFileNotFound
			if os.IsPermission(err) {
				code = errors.ErrIOPermissionDenied
			}
			return nil, nil, errors.IOWrap(err, code, "cannot open log file").WithContext("path", path)
		}
		return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
	}
	if mode == "monitor" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	return log.New(os.Stderr, "", log.LstdFlags), func() {}, nil
}

func fail(err error) {
	errors.Display(err)
	os.Exit(1)
}
