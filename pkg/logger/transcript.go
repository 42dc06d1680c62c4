package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const transcriptDelimiter = "================================================================================"

// Transcript 将一条命令与其回显写入日志
// 调试级别记录带分隔线的完整回显，保持设备回显的原始排版；
// 其它级别只记录头尾几行的紧凑摘要
func Transcript(entry *logrus.Entry, command, output string) {
	if !GetLogger().IsLevelEnabled(logrus.DebugLevel) {
		lines := ParseOutputLines(output, 3)
		entry.WithFields(logrus.Fields{
			"head": lines.HeadLines,
			"tail": lines.TailLines,
		}).Infof("command %q done", command)
		return
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(transcriptDelimiter)
	b.WriteString("\n    ")
	b.WriteString(command)
	b.WriteString("\n")
	b.WriteString(transcriptDelimiter)
	b.WriteString("\n")
	b.WriteString(output)
	entry.Debug(b.String())
}

// OutputLines 表示命令输出的头部和尾部行
type OutputLines struct {
	HeadLines []string `json:"head_lines"`
	TailLines []string `json:"tail_lines"`
}

// ParseOutputLines 截取命令输出的头尾若干行，用于紧凑日志
// maxLines: head与tail各自的最大行数
func ParseOutputLines(output string, maxLines int) OutputLines {
	if maxLines <= 0 {
		maxLines = 5
	}

	output = strings.ReplaceAll(output, "\r\n", "\n")
	output = strings.ReplaceAll(output, "\r", "\n")
	lines := strings.Split(output, "\n")

	total := len(lines)
	if total == 0 {
		return OutputLines{}
	}

	headCount := maxLines
	if headCount > total {
		headCount = total
	}
	head := make([]string, headCount)
	copy(head, lines[:headCount])

	tailCount := maxLines
	if tailCount > total {
		tailCount = total
	}
	tail := make([]string, tailCount)
	copy(tail, lines[total-tailCount:])

	// 头尾重叠时只保留头部
	if total <= maxLines {
		tail = nil
	}

	return OutputLines{HeadLines: head, TailLines: tail}
}
