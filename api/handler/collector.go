package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetcollector/fleetcollector/internal/config"
	"github.com/fleetcollector/fleetcollector/internal/database"
	"github.com/fleetcollector/fleetcollector/internal/inventory"
	"github.com/fleetcollector/fleetcollector/internal/model"
	"github.com/fleetcollector/fleetcollector/internal/service"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// CollectorHandler 采集任务接口
type CollectorHandler struct {
	launcher *service.Launcher
	cfg      *config.Config
}

// NewCollectorHandler 创建处理器
func NewCollectorHandler(launcher *service.Launcher, cfg *config.Config) *CollectorHandler {
	return &CollectorHandler{launcher: launcher, cfg: cfg}
}

// StartRunRequest 发起采集请求
// Hosts 为空时从 HostsFile（缺省为配置中的清单路径）加载
type StartRunRequest struct {
	Hosts     []model.Host `json:"hosts"`
	HostsFile string       `json:"hosts_file"`
}

// StartRun 发起一次后台采集
func (h *CollectorHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}

	hosts := req.Hosts
	if len(hosts) == 0 {
		path := req.HostsFile
		if path == "" {
			path = h.cfg.Collector.HostsFile
		}
		loaded, err := inventory.LoadHosts(path)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
			return
		}
		hosts = loaded
	}
	if len(hosts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "no hosts to collect"})
		return
	}

	run, err := h.launcher.LaunchAsync(hosts)
	if err != nil {
		logger.Errorf("failed to start run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":      run.ID,
		"status":      run.Status,
		"hosts_total": run.HostsTotal,
	})
}

// GetRun 查询任务状态
func (h *CollectorHandler) GetRun(c *gin.Context) {
	run, err := h.launcher.Store().GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns 列出历史任务
func (h *CollectorHandler) ListRuns(c *gin.Context) {
	runs, err := h.launcher.Store().ListRuns(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// ListRecords 列出一次任务的设备采集结果
func (h *CollectorHandler) ListRecords(c *gin.Context) {
	records, err := h.launcher.Store().ListRecords(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(records))
	for i := range records {
		out = append(out, gin.H{
			"hostname":  records[i].Hostname,
			"ip":        records[i].IP,
			"platform":  records[i].Platform,
			"values":    records[i].Values(),
			"raw_paths": records[i].RawPaths(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"run_id": c.Param("id"), "records": out})
}

// DownloadReport 下载任务的CSV报表
func (h *CollectorHandler) DownloadReport(c *gin.Context) {
	run, err := h.launcher.Store().GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": err.Error()})
		return
	}
	if run.ReportPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "run has no report"})
		return
	}
	c.FileAttachment(run.ReportPath, "report_"+run.ID+".csv")
}

// Health 健康检查
func (h *CollectorHandler) Health(c *gin.Context) {
	status := "ok"
	if err := database.Health(); err != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
