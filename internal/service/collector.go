package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fleetcollector/fleetcollector/addone/collect"
	"github.com/fleetcollector/fleetcollector/internal/config"
	"github.com/fleetcollector/fleetcollector/internal/model"
	"github.com/fleetcollector/fleetcollector/internal/report"
	"github.com/fleetcollector/fleetcollector/internal/util"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
	sshclient "github.com/fleetcollector/fleetcollector/pkg/ssh"
)

// Session 一台设备上的命令通道
type Session interface {
	Run(ctx context.Context, command string) (string, error)
	RunPrompt(ctx context.Context, command, expect, send string) (string, error)
	Close()
}

// Dialer 建立到设备的会话
type Dialer interface {
	Dial(ctx context.Context, host model.Host) (Session, error)
}

// sshDialer 基于SSH的默认拨号器
type sshDialer struct {
	cfg *config.Config
}

// NewSSHDialer 创建SSH拨号器
func NewSSHDialer(cfg *config.Config) Dialer {
	return &sshDialer{cfg: cfg}
}

func (d *sshDialer) Dial(ctx context.Context, host model.Host) (Session, error) {
	client := sshclient.NewClient(&sshclient.Config{
		Mode:           d.cfg.SSH.Mode,
		ConnectTimeout: d.cfg.SSH.ConnectTimeout,
		SettleDelay:    d.cfg.SSH.SettleDelay,
		ReadTimeout:    d.cfg.SSH.ReadTimeout,
	})
	if err := client.Connect(ctx, &sshclient.ConnectionInfo{
		Host:     host.IP,
		Port:     d.cfg.SSH.Port,
		Username: d.cfg.Collector.Username,
		Password: d.cfg.Collector.Password,
	}); err != nil {
		return nil, err
	}
	return client, nil
}

// Orchestrator 全网采集编排器
// 固定并发上限下对清单内所有主机发起采集，结果写入共享的CSV汇聚点
type Orchestrator struct {
	cfg     *config.Config
	dialer  Dialer
	sink    *report.CSVWriter
	archive Archive
	store   *RunStore
}

// NewOrchestrator 创建编排器，archive 可为nil（不归档原始回显）
func NewOrchestrator(cfg *config.Config, dialer Dialer, sink *report.CSVWriter, archive Archive, store *RunStore) *Orchestrator {
	return &Orchestrator{cfg: cfg, dialer: dialer, sink: sink, archive: archive, store: store}
}

// anyCheckEnabled 是否存在至少一个启用的检查项
func (o *Orchestrator) anyCheckEnabled() bool {
	for name, def := range collect.CheckDefaults() {
		if o.cfg.Collector.CheckEnabled(name, def) {
			return true
		}
	}
	return false
}

// NewRun 登记一次采集任务
func (o *Orchestrator) NewRun(hostsTotal int, reportPath string) *model.CollectionRun {
	run := &model.CollectionRun{
		ID:         uuid.NewString(),
		Status:     model.RunStatusRunning,
		HostsTotal: hostsTotal,
		ReportPath: reportPath,
		StartedAt:  time.Now(),
	}
	if err := o.store.CreateRun(run); err != nil {
		logger.Warnf("failed to persist run %s: %v", run.ID, err)
	}
	return run
}

// Run 对全部主机执行采集，阻塞到所有主机完成
// 单台主机的失败不影响其它主机，完成顺序不保证
func (o *Orchestrator) Run(ctx context.Context, hosts []model.Host) (*model.CollectionRun, error) {
	run := o.NewRun(len(hosts), "")
	return run, o.Execute(ctx, run, hosts)
}

// Execute 执行已登记的采集任务
func (o *Orchestrator) Execute(ctx context.Context, run *model.CollectionRun, hosts []model.Host) error {
	header := make([]string, 0, len(collect.Schema()))
	for _, col := range collect.Schema() {
		header = append(header, col.Title)
	}
	if err := o.sink.WriteHeader(header); err != nil {
		return err
	}

	// 所有检查项均被关闭时不建立任何连接
	if !o.anyCheckEnabled() {
		logger.Warn("all checks disabled, nothing to collect")
		run.Status = model.RunStatusFinished
		if err := o.store.FinishRun(run); err != nil {
			logger.Warnf("failed to persist run %s: %v", run.ID, err)
		}
		return nil
	}

	concurrency := o.cfg.Collector.Concurrency
	if concurrency <= 0 {
		concurrency = 20
	}

	var done, failed atomic.Int64
	// 停止信号只阻止调度新主机，已开始采集的主机完整跑完
	hostCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, host := range hosts {
		host := host
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			if err := o.collectHost(hostCtx, run.ID, host); err != nil {
				failed.Add(1)
			} else {
				done.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	run.HostsDone = int(done.Load())
	run.HostsFailed = int(failed.Load())
	run.Status = model.RunStatusFinished
	if err := o.store.FinishRun(run); err != nil {
		logger.Warnf("failed to persist run %s: %v", run.ID, err)
	}

	logger.Infof("run %s finished: %d collected, %d failed of %d hosts",
		run.ID, run.HostsDone, run.HostsFailed, run.HostsTotal)
	return nil
}

// collectHost 单台主机的采集状态机：连接、识别平台、逐检查项执行、汇总成行
// 连接失败不产生记录；检查项失败只污染其自有列，后续检查照常执行
func (o *Orchestrator) collectHost(ctx context.Context, runID string, host model.Host) error {
	log := logger.WithHost(host.Hostname, host.IP)

	session, err := o.dialer.Dial(ctx, host)
	if err != nil {
		log.Errorf("connection failed: %v", err)
		return err
	}
	defer session.Close()

	runner := &commandRunner{
		session: session,
		cache:   make(map[string]string),
		archive: o.archive,
		paths:   make(map[string]string),
		runID:   runID,
		host:    host,
		log:     log,
	}

	// 关闭分页，之后的回显不再有 More 提示
	if _, err := runner.output(ctx, collect.CmdDisableScreenPaging, nil); err != nil {
		log.Errorf("failed to disable screen paging: %v", err)
		return err
	}

	// 识别平台：先取硬件型号，再按型号选择采集档案
	versionOut, err := runner.output(ctx, collect.CmdDisplayVersion, nil)
	if err != nil {
		log.Errorf("failed to identify platform: %v", err)
		return err
	}
	hardware := collect.IdentifyHardware(versionOut)
	class := collect.Classify(hardware)
	profile := collect.Get(class)
	log.Infof("identified hardware %q as platform %q, using profile %s", hardware, class, profile.Name())

	values := make(map[string]string)
	owned := make(map[string]bool)
	for _, check := range profile.Checks() {
		if !o.cfg.Collector.CheckEnabled(check.Name, check.Default) {
			continue
		}
		for _, col := range check.Columns {
			owned[col] = true
		}
		fields, err := o.runCheck(ctx, runner, check)
		if err != nil {
			log.Errorf("check %s failed: %v", check.Name, err)
			continue
		}
		// 先写入者生效
		for col, v := range fields {
			if _, dup := values[col]; !dup {
				values[col] = v
			}
		}
		log.Infof("check %s done: %v", check.Name, fields)
	}

	values["mgmt_ip"] = host.IP
	values["updated"] = time.Now().Format("2006-01-02 15:04:05")
	owned["mgmt_ip"] = true
	owned["updated"] = true

	row := o.assembleRow(values, owned)
	if err := o.sink.WriteRow(row); err != nil {
		log.Errorf("failed to write report row: %v", err)
		return err
	}

	record := &model.DeviceRecord{
		RunID:    runID,
		Hostname: host.Hostname,
		IP:       host.IP,
		Platform: class,
	}
	record.SetValues(values)
	record.SetRawPaths(runner.paths)
	if err := o.store.SaveRecord(record); err != nil {
		log.Warnf("failed to persist device record: %v", err)
	}

	log.Warnf("Host %s - Done", host.Label())
	return nil
}

// runCheck 执行一个检查项的全部命令与规则
// 任何规则未命中即整个检查失败，由调用方将其列置 Error
func (o *Orchestrator) runCheck(ctx context.Context, runner *commandRunner, check collect.Check) (map[string]string, error) {
	fields := make(map[string]string)
	for _, cmd := range check.Commands {
		output, err := runner.output(ctx, cmd.CLI, cmd.Prompt)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", cmd.CLI, err)
		}
		for i := range cmd.Rules {
			extracted, err := cmd.Rules[i].Extract(output)
			if err != nil {
				return nil, fmt.Errorf("command %q: %w", cmd.CLI, err)
			}
			for col, v := range extracted {
				if _, dup := fields[col]; !dup {
					fields[col] = v
				}
			}
		}
	}
	if check.Compose != nil {
		check.Compose(fields)
	}
	return fields, nil
}

// assembleRow 按报表列序组装一行
// 缺失的列：启用检查应产出而没有的置 Error，无检查覆盖的置 N/A
func (o *Orchestrator) assembleRow(values map[string]string, owned map[string]bool) []string {
	schema := collect.Schema()
	row := make([]string, 0, len(schema))
	for _, col := range schema {
		if v, ok := values[col.Key]; ok {
			row = append(row, v)
			continue
		}
		if owned[col.Key] {
			row = append(row, collect.ValueError)
		} else {
			row = append(row, collect.ValueNA)
		}
	}
	return row
}

// RunCommands 原始命令模式：对全部主机执行给定命令列表，只归档回显不做提取
func (o *Orchestrator) RunCommands(ctx context.Context, hosts []model.Host, commands []string) error {
	if len(commands) == 0 {
		return fmt.Errorf("no commands to run")
	}
	runID := uuid.NewString()

	concurrency := o.cfg.Collector.Concurrency
	if concurrency <= 0 {
		concurrency = 20
	}
	// 停止信号只阻止调度新主机，已开始的主机完整跑完
	hostCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, host := range hosts {
		host := host
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			log := logger.WithHost(host.Hostname, host.IP)
			session, err := o.dialer.Dial(hostCtx, host)
			if err != nil {
				log.Errorf("connection failed: %v", err)
				return nil
			}
			defer session.Close()

			runner := &commandRunner{
				session: session,
				cache:   make(map[string]string),
				archive: o.archive,
				paths:   make(map[string]string),
				runID:   runID,
				host:    host,
				log:     log,
			}
			if _, err := runner.output(hostCtx, collect.CmdDisableScreenPaging, nil); err != nil {
				log.Errorf("failed to disable screen paging: %v", err)
				return nil
			}
			for _, cmd := range commands {
				if _, err := runner.output(hostCtx, cmd, nil); err != nil {
					log.Errorf("command %q failed: %v", cmd, err)
				}
			}
			log.Warnf("Host %s - Done", host.Label())
			return nil
		})
	}
	return g.Wait()
}

// commandRunner 单台主机的命令执行器
// 同一条命令只发送一次，后续检查复用缓存的回显
type commandRunner struct {
	session Session
	cache   map[string]string
	archive Archive
	paths   map[string]string
	runID   string
	host    model.Host
	log     *logrus.Entry
}

func (r *commandRunner) output(ctx context.Context, cli string, prompt *collect.Prompt) (string, error) {
	if cached, ok := r.cache[cli]; ok {
		return cached, nil
	}

	var raw string
	var err error
	if prompt != nil {
		raw, err = r.session.RunPrompt(ctx, cli, prompt.Expect, prompt.Send)
	} else {
		raw, err = r.session.Run(ctx, cli)
	}
	if err != nil {
		return "", err
	}

	output := util.NormalizeNewlines(util.DecodeDeviceOutput([]byte(raw)))
	r.cache[cli] = output
	logger.Transcript(r.log, cli, output)

	if r.archive != nil {
		uri, err := r.archive.Save(ctx, r.runID, r.host.Label(), cli, output)
		if err != nil {
			r.log.Warnf("failed to archive output of %q: %v", cli, err)
		} else {
			r.paths[cli] = uri
		}
	}
	return output, nil
}
