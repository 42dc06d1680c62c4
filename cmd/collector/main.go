package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fleetcollector/fleetcollector/internal/config"
	"github.com/fleetcollector/fleetcollector/internal/database"
	"github.com/fleetcollector/fleetcollector/internal/inventory"
	"github.com/fleetcollector/fleetcollector/internal/service"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，空则按默认位置查找")
	hostsPath := flag.String("hosts", "", "主机清单文件，覆盖配置项 collector.hosts_file")
	checks := flag.String("checks", "", "额外启用的检查项，逗号分隔，如 lldp,boards,routes")
	reportName := flag.String("report", "", "报表文件名（不含扩展名），覆盖配置项 report.filename")
	commandsPath := flag.String("commands", "", "原始命令模式：逐行执行文件中的命令，只归档不出报表")
	concurrency := flag.Int("concurrency", 0, "并发主机数，覆盖配置项 collector.concurrency")
	debug := flag.Bool("debug", false, "输出调试日志（含设备回显）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 命令行参数覆盖配置
	if *hostsPath != "" {
		cfg.Collector.HostsFile = *hostsPath
	}
	if *reportName != "" {
		cfg.Report.Filename = *reportName
	}
	if *concurrency > 0 {
		cfg.Collector.Concurrency = *concurrency
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	for _, name := range strings.Split(*checks, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if cfg.Collector.Checks == nil {
			cfg.Collector.Checks = make(map[string]bool)
		}
		cfg.Collector.Checks[name] = true
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// 数据库缺失不阻塞命令行采集，运行记录落库自动跳过
	if err := database.InitSQLite(cfg.Database.SQLite); err != nil {
		logger.Warnf("database unavailable, run history disabled: %v", err)
	} else {
		defer database.Close()
	}

	hosts, err := inventory.LoadHosts(cfg.Collector.HostsFile)
	if err != nil {
		logger.Fatalf("Failed to load hosts file: %v", err)
	}
	if len(hosts) == 0 {
		logger.Fatalf("No valid hosts in %s", cfg.Collector.HostsFile)
	}

	// Ctrl-C 中断采集
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	launcher := service.NewLauncher(cfg)
	start := time.Now()

	if *commandsPath != "" {
		commands, err := inventory.LoadCommands(*commandsPath)
		if err != nil {
			logger.Fatalf("Failed to load commands file: %v", err)
		}
		if err := launcher.LaunchCommands(ctx, hosts, commands); err != nil {
			logger.Fatalf("Collection failed: %v", err)
		}
	} else {
		run, err := launcher.Launch(ctx, hosts)
		if err != nil {
			logger.Fatalf("Collection failed: %v", err)
		}
		logger.Infof("Run %s finished: %d hosts, %d failed, report %s",
			run.ID, run.HostsTotal, run.HostsFailed, run.ReportPath)
	}

	logger.Warnf("It took %.0f seconds", time.Since(start).Seconds())
}
