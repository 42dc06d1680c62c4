package collect

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoMatch 规则未命中且无法确认为合法空结果
var ErrNoMatch = errors.New("no match in command output")

// Prompt 命令交互：命中 Expect 后发送 Send
// 例如 S 系列 display elabel 的 [Y/N] 确认
type Prompt struct {
	Expect string
	Send   string
}

// Rule 从命令回显中提取字段的规则
// Pattern 使用命名分组；非 Repeated 时按 Fields 将分组映射到列，
// Repeated 时对每条匹配展开 Template（regexp.Expand 语法）并用 Join 连接
type Rule struct {
	Pattern *regexp.Regexp
	// Fallback Pattern 未命中时的候补正则
	Fallback *regexp.Regexp
	// Fields 分组名到列名的映射；为空时分组名即列名
	Fields map[string]string
	// Column Repeated 模式的结果列
	Column string
	// Count 匹配条数写入的列（可单独使用）
	Count string
	// Template 每条匹配的展开模板，如 "${index} - ${type}"
	Template string
	// Join 条目连接符
	Join string
	// Filter 返回 false 的匹配条目被丢弃
	Filter func(groups map[string]string) bool
	// Min 匹配条数下限，不足时结果列置空
	Min int
	// Confirm 确认合法零匹配的正则（如 "No patch exists"）
	Confirm *regexp.Regexp
	// Absent Confirm 命中时写入的列值
	Absent map[string]string
	// Default 未命中且无 Confirm 时的兜底值（如路由数为 0）
	Default string
	// Post 按列的值后处理（如 uptime 转最后重启日期）
	Post map[string]func(string) string
	// Repeated 多次匹配模式
	Repeated bool
	// Optional 未命中时不视为错误（如非堆叠设备的堆叠摘要）
	Optional bool
}

// Extract 对命令回显执行规则，返回列名到值的映射
// 未命中且无 Confirm/Default 时返回 ErrNoMatch
func (r *Rule) Extract(output string) (map[string]string, error) {
	if r.Repeated {
		return r.extractRepeated(output), nil
	}
	return r.extractSingle(output)
}

func (r *Rule) extractSingle(output string) (map[string]string, error) {
	pattern := r.Pattern
	match := pattern.FindStringSubmatch(output)
	if match == nil && r.Fallback != nil {
		pattern = r.Fallback
		match = pattern.FindStringSubmatch(output)
	}
	if match == nil {
		if r.Confirm != nil && r.Confirm.MatchString(output) {
			return r.absentFields(), nil
		}
		if r.Default != "" {
			return r.defaultFields(), nil
		}
		if r.Optional {
			return map[string]string{}, nil
		}
		return nil, ErrNoMatch
	}

	groups := r.groupMap(pattern, match)
	fields := make(map[string]string)
	if len(r.Fields) > 0 {
		for group, column := range r.Fields {
			fields[column] = groups[group]
		}
	} else {
		for group, value := range groups {
			fields[group] = value
		}
	}
	r.applyPost(fields)
	return fields, nil
}

func (r *Rule) extractRepeated(output string) map[string]string {
	var entries []string
	count := 0
	for _, idx := range r.Pattern.FindAllStringSubmatchIndex(output, -1) {
		groups := r.groupMapIndex(output, idx)
		if r.Filter != nil && !r.Filter(groups) {
			continue
		}
		count++
		if r.Template != "" {
			entries = append(entries, string(r.Pattern.ExpandString(nil, r.Template, output, idx)))
		}
	}

	fields := make(map[string]string)
	if r.Column != "" {
		if count >= r.Min {
			fields[r.Column] = strings.Join(entries, r.Join)
		} else {
			fields[r.Column] = ""
		}
	}
	if r.Count != "" {
		fields[r.Count] = strconv.Itoa(count)
	}
	r.applyPost(fields)
	return fields
}

func (r *Rule) groupMap(pattern *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

func (r *Rule) groupMapIndex(output string, idx []int) map[string]string {
	groups := make(map[string]string)
	for i, name := range r.Pattern.SubexpNames() {
		if name == "" {
			continue
		}
		start, end := idx[2*i], idx[2*i+1]
		if start >= 0 {
			groups[name] = output[start:end]
		}
	}
	return groups
}

func (r *Rule) absentFields() map[string]string {
	fields := make(map[string]string)
	for column, value := range r.Absent {
		fields[column] = value
	}
	return fields
}

func (r *Rule) defaultFields() map[string]string {
	fields := make(map[string]string)
	for _, column := range r.columns() {
		fields[column] = r.Default
	}
	return fields
}

func (r *Rule) applyPost(fields map[string]string) {
	for column, fn := range r.Post {
		if v, ok := fields[column]; ok {
			fields[column] = fn(v)
		}
	}
}

// columns 规则产出的目标列
func (r *Rule) columns() []string {
	var cols []string
	if r.Repeated {
		if r.Column != "" {
			cols = append(cols, r.Column)
		}
		if r.Count != "" {
			cols = append(cols, r.Count)
		}
		return cols
	}
	if len(r.Fields) > 0 {
		for _, column := range r.Fields {
			cols = append(cols, column)
		}
		return cols
	}
	for _, name := range r.Pattern.SubexpNames() {
		if name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

// Command 一条CLI及其提取规则
type Command struct {
	CLI    string
	Prompt *Prompt
	Rules  []Rule
}

// Check 一个检查项：若干命令与产出的列
// Compose 在所有规则执行后对字段做跨规则组装（如堆叠摘要）
type Check struct {
	Name     string
	Commands []Command
	// Columns 本检查在报表中拥有的列；检查失败时这些列置 Error，
	// 检查未启用或平台不适用时置 N/A
	Columns []string
	Compose func(fields map[string]string)
	// Default 未在配置中出现时是否默认启用
	Default bool
}

// Profile 平台采集档案
type Profile interface {
	Name() string
	Checks() []Check
}
