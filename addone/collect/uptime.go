package collect

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var uptimePeriodRegex = regexp.MustCompile(`(?P<number>\d+)\s+(?P<period_name>\w+)`)

// ConvertUptimeToSince 将 "28 weeks, 1 day, 10 hours, 7 minutes" 形式的
// 运行时长换算为最后重启日期，格式 "2019-09-20 (Fri) 16:28"
// 无法换算时返回 N/A 并附原始时长
func ConvertUptimeToSince(uptime string, now time.Time) string {
	var days, minutes int
	for _, match := range uptimePeriodRegex.FindAllStringSubmatch(uptime, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch match[2] {
		case "week", "weeks":
			days += n * 7
		case "day", "days":
			days += n
		case "hour", "hours":
			minutes += n * 60
		case "minute", "minutes":
			minutes += n
		}
	}
	if days == 0 && minutes == 0 {
		return fmt.Sprintf("N/A for '%s'", uptime)
	}
	since := now.AddDate(0, 0, -days).Add(-time.Duration(minutes) * time.Minute)
	return since.Format("2006-01-02 (Mon) 15:04")
}
