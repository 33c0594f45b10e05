package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"procwatch/config"
	"procwatch/internal/collector"
	"procwatch/internal/detector"
	"procwatch/internal/logger"
	"procwatch/internal/output/alertjson"
	"procwatch/internal/output/alertring"
	"procwatch/internal/pipeline"
	"procwatch/internal/rules"
	"procwatch/internal/server"
	"procwatch/internal/services"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("procwatch.yml"); err == nil {
		return "procwatch.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "procwatch.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "procwatch.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.ProcWatch.Collector.Interval <= 0 {
		cfg.ProcWatch.Collector.Interval = time.Second
	}

	if cfg.ProcWatch.Output.Mode == "" {
		cfg.ProcWatch.Output.Mode = "file"
	}
	if cfg.ProcWatch.Output.File.Path == "" {
		cfg.ProcWatch.Output.File.Path = "output/alerts.jsonl"
	}
	if cfg.ProcWatch.Output.RingCapacity <= 0 {
		cfg.ProcWatch.Output.RingCapacity = 200
	}

	if cfg.ProcWatch.Server.ListenAddr == "" {
		cfg.ProcWatch.Server.ListenAddr = "127.0.0.1:9187"
	}

	if cfg.ProcWatch.Logging.Level == "" {
		cfg.ProcWatch.Logging.Level = "info"
	}
}

func loadConfigOrDefaults(configArg string) *config.Config {
	configPath := findConfigFile(configArg)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = &config.Config{}
	}
	applyDefaults(cfg)
	return cfg
}

func runMonitor(args []string) {
	configArg := ""
	if len(args) > 0 {
		configArg = args[0]
	}
	cfg := loadConfigOrDefaults(configArg)

	if err := logger.Init(cfg.ProcWatch.Logging.Enabled, cfg.ProcWatch.Logging.Level, cfg.ProcWatch.Logging.File, cfg.ProcWatch.Logging.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Infof("procwatch starting")

	ruleSet := rules.DefaultRules()
	if path := strings.TrimSpace(cfg.ProcWatch.Detector.RulesFile); path != "" {
		loaded, err := rules.Load(path)
		if err != nil {
			logger.Errorf("Failed to load rules from %s: %v", path, err)
			log.Fatalf("Failed to load rules: %v", err)
		}
		ruleSet = loaded
		logger.Infof("Rules loaded from %s: %d rules", path, len(loaded))
	}
	det := detector.NewWithRules(ruleSet)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, err := collector.New(ctx)
	if err != nil {
		logger.Errorf("Failed to create collector: %v", err)
		log.Fatalf("Failed to create collector: %v", err)
	}

	ring := alertring.NewRing(cfg.ProcWatch.Output.RingCapacity)
	sinks := []pipeline.AlertSink{ring}
	switch cfg.ProcWatch.Output.Mode {
	case "file":
		w, err := alertjson.NewWriter(cfg.ProcWatch.Output.File.Path)
		if err != nil {
			logger.Errorf("Failed to create alert file writer: %v", err)
			log.Fatalf("Failed to create alert file writer: %v", err)
		}
		sinks = append(sinks, w)
		logger.Infof("Alert output mode: file (%s)", cfg.ProcWatch.Output.File.Path)
	case "none":
		logger.Infof("Alert output mode: none (ring only)")
	default:
		log.Fatalf("Unknown output mode: %s", cfg.ProcWatch.Output.Mode)
	}

	var srv *server.Server
	if cfg.ProcWatch.Server.Enabled {
		srv = server.New(cfg.ProcWatch.Server.ListenAddr, det, ring)
		srv.Start()
	}

	pipe := pipeline.NewMonitor(source, det, sinks, cfg.ProcWatch.Collector.Interval)
	go func() {
		if err := pipe.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Pipeline error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	cancel()
	time.Sleep(1 * time.Second)

	if srv != nil {
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Errorf("Error stopping introspection server: %v", err)
		}
	}
	if err := pipe.Close(); err != nil {
		logger.Errorf("Error closing pipeline: %v", err)
	}

	logger.Infof("procwatch stopped")
}

func runServices(args []string) int {
	fs := flag.NewFlagSet("services", flag.ContinueOnError)
	action := fs.String("action", "list", "One of: list, start, stop, restart, enable, disable, status")
	name := fs.String("name", "", "Service name (without .service suffix)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	mgr := services.NewManager()

	if *action == "list" {
		list, err := mgr.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list services: %v\n", err)
			return 1
		}
		for _, svc := range list {
			fmt.Printf("%-40s %-8s enabled=%-5v pid=%-7d %s\n",
				svc.Name, svc.State, svc.Enabled, svc.MainPID, svc.Description)
		}
		return 0
	}

	if strings.TrimSpace(*name) == "" {
		fmt.Fprintf(os.Stderr, "-name is required for action %q\n", *action)
		return 2
	}

	var err error
	switch *action {
	case "start":
		err = mgr.Start(*name)
	case "stop":
		err = mgr.Stop(*name)
	case "restart":
		err = mgr.Restart(*name)
	case "enable":
		err = mgr.Enable(*name)
	case "disable":
		err = mgr.Disable(*name)
	case "status":
		var out string
		out, err = mgr.Status(*name)
		if err == nil {
			fmt.Print(out)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q\n", *action)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func runRules(args []string) int {
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	export := fs.String("export", "", "Write the active rule set to this YAML file")
	rulesFile := fs.String("rules-file", "", "Load rules from this YAML file instead of the defaults")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ruleSet := rules.DefaultRules()
	if strings.TrimSpace(*rulesFile) != "" {
		loaded, err := rules.Load(*rulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load rules: %v\n", err)
			return 1
		}
		ruleSet = loaded
	}

	if strings.TrimSpace(*export) != "" {
		if err := rules.Save(*export, ruleSet); err != nil {
			fmt.Fprintf(os.Stderr, "failed to export rules: %v\n", err)
			return 1
		}
		fmt.Printf("exported %d rules to %s\n", len(ruleSet), *export)
		return 0
	}

	data, err := yaml.Marshal(rules.File{Version: 1, Rules: ruleSet})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode rules: %v\n", err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			runMonitor(os.Args[2:])
			return
		case "services":
			os.Exit(runServices(os.Args[2:]))
		case "rules":
			os.Exit(runRules(os.Args[2:]))
		default:
			// Backward-compatible mode: first arg is config path.
			runMonitor(os.Args[1:])
			return
		}
	}

	runMonitor(nil)
}
