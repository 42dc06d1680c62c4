package inventory

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fleetcollector/fleetcollector/internal/model"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// 清单行格式："hostname, 10.198.177.17"，#开头为注释
var hostLineRegex = regexp.MustCompile(`(?P<hostname>\S+)\s*,\s*(?P<ip>\d+\.\d+\.\d+\.\d+).*`)

// LoadHosts 读取主机清单文件
// 注释行与无法解析的行静默跳过（仅记录调试日志），不中断加载
func LoadHosts(path string) ([]model.Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hosts file: %w", err)
	}
	defer f.Close()

	var hosts []model.Host
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		host, ok := parseHostLine(line)
		if !ok {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "#") {
				logger.Debugf("skipping unparsable hosts line: %q", line)
			}
			continue
		}
		hosts = append(hosts, host)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hosts file: %w", err)
	}

	logger.Infof("loaded %d hosts from %s", len(hosts), path)
	return hosts, nil
}

// parseHostLine 解析单行清单
func parseHostLine(line string) (model.Host, bool) {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return model.Host{}, false
	}
	match := hostLineRegex.FindStringSubmatch(line)
	if match == nil {
		return model.Host{}, false
	}
	return model.Host{Hostname: match[1], IP: match[2]}, true
}

// LoadCommands 读取命令清单文件，一行一条命令，空行与注释跳过
func LoadCommands(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open commands file: %w", err)
	}
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands file: %w", err)
	}
	return commands, nil
}
