package huawei_s

import (
	"regexp"

	"github.com/fleetcollector/fleetcollector/addone/collect"
)

func init() {
	collect.Register("S", &Plugin{})
}

// Plugin 华为S系列园区交换机采集档案
type Plugin struct{}

func (p *Plugin) Name() string { return "S" }

var (
	// display device：堆叠成员的子卡行槽位号非行首数字，主板过滤在规则内完成
	boardsPattern = regexp.MustCompile(
		`\n(?P<index>\S*\d+)\s+(?P<sub>\S+)\s+(?P<type>\S+)\s+(?P<online>\S+)\s+` +
			`(?P<power>\S+)\s+(?P<register>\S+)\s+(?P<status>\S+)\s+(?P<role>\S+)`)

	// display mac-address summary：S先报占用后报容量
	macSummaryPattern = regexp.MustCompile(
		`In-used\s+:\s+(?P<in_used>\d+)\nCapacity\s+:\s+(?P<capacity>\d+)`)

	// display memory-usage
	memoryPattern = regexp.MustCompile(`\n\s*Memory Using Percentage Is\s*:\s*(?P<memory_usage>\d+)%`)
)

func (p *Plugin) Checks() []collect.Check {
	return []collect.Check{
		collect.CommonCheck(),
		collect.LLDPCheck(),
		collect.StackCheck(),
		collect.ChassisESNCheck(),
		// S的elabel命令会询问是否继续，需要应答y
		collect.ElabelCheck("display elabel", &collect.Prompt{Expect: "[Y/N]", Send: "y"}),
		collect.BoardsCheck(boardsPattern),
		collect.MACSummaryCheck(macSummaryPattern),
		collect.RoutesCheck(),
		collect.VRFCheck(),
		// 802.1x/MAB接入用户仅S系列支持
		collect.AccessUsersCheck(),
		collect.MemoryCheck("display memory-usage", memoryPattern),
	}
}
