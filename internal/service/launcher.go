package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fleetcollector/fleetcollector/addone/collect"
	"github.com/fleetcollector/fleetcollector/internal/config"
	"github.com/fleetcollector/fleetcollector/internal/model"
	"github.com/fleetcollector/fleetcollector/internal/report"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// Launcher 组装一次采集所需的报表、归档与编排器
type Launcher struct {
	cfg   *config.Config
	store *RunStore
}

// NewLauncher 创建装配器
func NewLauncher(cfg *config.Config) *Launcher {
	return &Launcher{cfg: cfg, store: NewRunStore()}
}

// Store 运行记录存储
func (l *Launcher) Store() *RunStore {
	return l.store
}

// reportBase 报表文件基础路径（不含扩展名）
func (l *Launcher) reportBase() string {
	name := l.cfg.Report.Filename
	if name == "" {
		name = "report_" + time.Now().Format("2006-01-02_15-04-05")
	}
	return filepath.Join(l.cfg.Report.OutputDir, name)
}

// columnMeta 报表列元数据，配置中的覆盖项优先
func (l *Launcher) columnMeta() []report.ColumnMeta {
	schema := collect.Schema()
	meta := make([]report.ColumnMeta, 0, len(schema))
	for _, col := range schema {
		m := report.ColumnMeta{Title: col.Title, Width: col.Width, Comment: col.Comment}
		if override, ok := l.cfg.Report.Columns[col.Key]; ok {
			if override.Width > 0 {
				m.Width = override.Width
			}
			if override.Comment != "" {
				m.Comment = override.Comment
			}
		}
		meta = append(meta, m)
	}
	return meta
}

// Launch 同步执行一次完整采集：CSV落盘，结束后转换Excel
func (l *Launcher) Launch(ctx context.Context, hosts []model.Host) (*model.CollectionRun, error) {
	base := l.reportBase()
	csvPath := base + ".csv"

	sink, err := report.NewCSVWriter(csvPath)
	if err != nil {
		return nil, err
	}

	orchestrator := NewOrchestrator(l.cfg, NewSSHDialer(l.cfg), sink, NewArchive(&l.cfg.Storage), l.store)
	run := orchestrator.NewRun(len(hosts), csvPath)

	execErr := orchestrator.Execute(ctx, run, hosts)
	if err := sink.Close(); err != nil {
		logger.Errorf("failed to close report file: %v", err)
	}
	if execErr != nil {
		return run, execErr
	}

	l.buildExcel(csvPath, base+".xlsx")
	return run, nil
}

// LaunchAsync 登记任务后立即返回，采集在后台进行
func (l *Launcher) LaunchAsync(hosts []model.Host) (*model.CollectionRun, error) {
	base := l.reportBase()
	csvPath := base + ".csv"

	sink, err := report.NewCSVWriter(csvPath)
	if err != nil {
		return nil, err
	}

	orchestrator := NewOrchestrator(l.cfg, NewSSHDialer(l.cfg), sink, NewArchive(&l.cfg.Storage), l.store)
	run := orchestrator.NewRun(len(hosts), csvPath)

	go func() {
		if err := orchestrator.Execute(context.Background(), run, hosts); err != nil {
			logger.Errorf("run %s failed: %v", run.ID, err)
		}
		if err := sink.Close(); err != nil {
			logger.Errorf("failed to close report file: %v", err)
		}
		l.buildExcel(csvPath, base+".xlsx")
	}()
	return run, nil
}

// LaunchCommands 原始命令模式，无报表只归档
func (l *Launcher) LaunchCommands(ctx context.Context, hosts []model.Host, commands []string) error {
	orchestrator := NewOrchestrator(l.cfg, NewSSHDialer(l.cfg), nil, NewArchive(&l.cfg.Storage), l.store)
	return orchestrator.RunCommands(ctx, hosts, commands)
}

func (l *Launcher) buildExcel(csvPath, xlsxPath string) {
	if !l.cfg.Report.Excel {
		return
	}
	if err := report.BuildExcel(csvPath, xlsxPath, l.columnMeta()); err != nil {
		logger.Errorf("failed to build excel report: %v", err)
		return
	}
	logger.Warnf("Excel report %s has been generated", xlsxPath)
}
