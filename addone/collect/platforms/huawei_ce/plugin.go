package huawei_ce

import (
	"regexp"

	"github.com/fleetcollector/fleetcollector/addone/collect"
)

func init() {
	collect.Register("CE", &Plugin{})
}

// Plugin 华为CE系列数据中心交换机采集档案
type Plugin struct{}

func (p *Plugin) Name() string { return "CE" }

var (
	// display device：槽位号为纯数字的行即主板，电源风扇槽位带PWR/FAN前缀
	boardsPattern = regexp.MustCompile(
		`\s+(?P<index>\d+)\s+(?P<sub>\S+)\s+(?P<type>\S+)\s+(?P<online>\S+)\s+` +
			`(?P<power>\S+)\s+(?P<register>\S+)\s+(?P<status>\S+)\s+(?P<role>\S+)`)

	// display mac-address summary：CE先报容量后报占用
	macSummaryPattern = regexp.MustCompile(
		`Capacity of this slot\s*:\s*(?P<capacity>\d+)(.*\n)*?In-used\s*:\s*(?P<in_used>\d+)`)

	// display memory
	memoryPattern = regexp.MustCompile(`\nMemory Using Percentage\s*:\s*(?P<memory_usage>\d+)%`)
)

func (p *Plugin) Checks() []collect.Check {
	return []collect.Check{
		collect.CommonCheck(),
		collect.LLDPCheck(),
		collect.StackCheck(),
		collect.ChassisESNCheck(),
		// CE的elabel命令直接输出，无需交互确认
		collect.ElabelCheck("display device elabel", nil),
		collect.BoardsCheck(boardsPattern),
		collect.MACSummaryCheck(macSummaryPattern),
		collect.RoutesCheck(),
		collect.VRFCheck(),
		collect.MemoryCheck("display memory", memoryPattern),
	}
}
