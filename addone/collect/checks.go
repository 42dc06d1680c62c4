package collect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CmdDisableScreenPaging 关闭分页回显，连接后所有命令执行前发送
const CmdDisableScreenPaging = "screen-length 0 temporary"

// 采集命令
const (
	CmdDisplayVersion       = "display version"
	CmdDisplayPatch         = "display patch"
	CmdDisplaySysname       = "display current-configuration | include sysname"
	CmdDisplayLLDPNeighbor  = "display lldp neighbor"
	CmdDisplayStack         = "display stack"
	CmdDisplayESN           = "display esn"
	CmdDisplayDevice        = "display device"
	CmdDisplayMACSummary    = "display mac-address summary"
	CmdDisplayRoutesSummary = "display ip routing-table all-vpn-instance statistics"
	CmdDisplayVPNInstance   = "display ip vpn-instance"
)

// 检查项名称
const (
	CheckCommon      = "common"
	CheckLLDP        = "lldp"
	CheckStack       = "stack"
	CheckESNChassis  = "esn_chassis"
	CheckESNFull     = "esn_full"
	CheckBoards      = "boards"
	CheckMACSummary  = "mac_summary"
	CheckRoutes      = "routes"
	CheckVRF         = "vrf"
	CheckAccessUsers = "access_users"
	CheckMemory      = "memory"
)

// checkDefaults 各检查项未在配置中出现时的默认启用状态
var checkDefaults = map[string]bool{
	CheckCommon:      true,
	CheckStack:       true,
	CheckLLDP:        false,
	CheckESNChassis:  false,
	CheckESNFull:     false,
	CheckBoards:      false,
	CheckMACSummary:  false,
	CheckRoutes:      false,
	CheckVRF:         false,
	CheckAccessUsers: false,
	CheckMemory:      false,
}

// CheckDefaults 返回全部检查项及其默认启用状态（副本）
func CheckDefaults() map[string]bool {
	defaults := make(map[string]bool, len(checkDefaults))
	for name, def := range checkDefaults {
		defaults[name] = def
	}
	return defaults
}

// display version 中的硬件型号，华为前缀行优先
var hardwareRule = Rule{
	Pattern:  regexp.MustCompile(`Copyright .*\nHUAWEI (?P<hardware>\S+).* uptime`),
	Fallback: regexp.MustCompile(`Copyright .*\n(?P<hardware>\S+).* uptime`),
}

// IdentifyHardware 从 display version 回显中取硬件型号，未识别返回空串
func IdentifyHardware(output string) string {
	fields, err := hardwareRule.Extract(output)
	if err != nil {
		return ""
	}
	return fields["hardware"]
}

// CommonCheck 基础信息：主机名、硬件、软件版本、补丁、最后重启日期
func CommonCheck() Check {
	return Check{
		Name:    CheckCommon,
		Default: true,
		Columns: []string{"hostname", "hardware", "software_version", "patch_version", "uptime"},
		Commands: []Command{
			{
				CLI: CmdDisplayVersion,
				Rules: []Rule{
					{Pattern: regexp.MustCompile(`(?i)VRP.*software.*(?P<software_version>V\d+R\d+\S+)\)`)},
					hardwareRule,
					{
						Pattern: regexp.MustCompile(`uptime is\s+(?P<uptime>.*)`),
						Post: map[string]func(string) string{
							"uptime": func(v string) string {
								return ConvertUptimeToSince(v, time.Now())
							},
						},
					},
				},
			},
			{
				CLI: CmdDisplayPatch,
				Rules: []Rule{
					{
						Pattern: regexp.MustCompile(`Patch Package Version\s*:\s*(?P<patch_version>\S+)`),
						Confirm: regexp.MustCompile(`No patch exists`),
						Absent:  map[string]string{"patch_version": "No patch"},
					},
				},
			},
			{
				CLI: CmdDisplaySysname,
				Rules: []Rule{
					{Pattern: regexp.MustCompile(`sysname (?P<hostname>\S+)`)},
				},
			},
		},
	}
}

// LLDPCheck 邻居列表，管理口（MEth）上的邻居不计
func LLDPCheck() Check {
	return Check{
		Name: CheckLLDP,
		Commands: []Command{
			{
				CLI: CmdDisplayLLDPNeighbor,
				Rules: []Rule{
					{
						Pattern: regexp.MustCompile(
							`(?P<interface>\S+) has (?P<interface_neighbors_number>\d+) neighbor.*\n\n` +
								`Neighbor index(.*\n)*?` +
								`Port ID\s+:\s*(?P<neighbor_interface>\S+)(.*\n)*?` +
								`System name\s+:\s*(?P<neighbor_hostname>\S+)(.*\n)*?` +
								`System description\s+:(?P<neighbor_description>\S+)(.*\n)*?` +
								`Management address.+:(?P<neighbor_mgmt_address>\d+\.\d+\.\d+\.\d+)`),
						Repeated: true,
						Column:   "lldp_neighbors",
						Template: "${interface} -> ${neighbor_hostname} [${neighbor_interface}] ${neighbor_mgmt_address}",
						Join:     "; ",
						Filter: func(groups map[string]string) bool {
							return !strings.Contains(strings.ToLower(groups["interface"]), "meth")
						},
					},
				},
			},
		},
	}
}

// StackCheck 堆叠摘要，成员数大于1才算堆叠
func StackCheck() Check {
	return Check{
		Name:    CheckStack,
		Default: true,
		Columns: []string{"stack_info"},
		Commands: []Command{
			{
				CLI: CmdDisplayStack,
				Rules: []Rule{
					{
						Pattern: regexp.MustCompile(
							`Stack mode\s*:\s*(?P<stack_mode>\S+)(.*\n)*?` +
								`Stack topology type\s*:\s*(?P<stack_topo>\S+)(.*\n)*?` +
								`Stack system MAC\s*:\s*(?P<stack_mac>\S+-\S+-\S+)`),
						Optional: true,
					},
					{
						Pattern: regexp.MustCompile(
							`(?P<index>\d+)\s+(?P<role>\S+)\s+(?P<mac>\S+-\S+-\S+)\s+(?P<priority>\d+)\s+(?P<device_type>\S+)`),
						Repeated: true,
						Count:    "stack_members",
					},
				},
			},
		},
		Compose: func(fields map[string]string) {
			members, _ := strconv.Atoi(fields["stack_members"])
			topo := fields["stack_topo"]
			switch {
			case members > 1 && topo != "":
				fields["stack_info"] = fmt.Sprintf("topo: %s, members: %d", topo, members)
			case members > 1:
				fields["stack_info"] = fmt.Sprintf("members: %d", members)
			default:
				fields["stack_info"] = ""
			}
			delete(fields, "stack_mode")
			delete(fields, "stack_topo")
			delete(fields, "stack_mac")
			delete(fields, "stack_members")
		},
	}
}

// ChassisESNCheck 整机ESN列表
func ChassisESNCheck() Check {
	return Check{
		Name:    CheckESNChassis,
		Columns: []string{"esn_chassis"},
		Commands: []Command{
			{
				CLI: CmdDisplayESN,
				Rules: []Rule{
					{
						Pattern:  regexp.MustCompile(`(?P<index>\S+)\s*:\s*(?P<esn>\S+)`),
						Repeated: true,
						Column:   "esn_chassis",
						Template: "${esn}",
						Join:     ", ",
					},
				},
			},
		},
	}
}

// ElabelCheck 全部单板与光模块ESN
// 命令与交互按平台不同：CE 用 display device elabel，
// S 用 display elabel 且需应答 [Y/N] 确认
func ElabelCheck(cli string, prompt *Prompt) Check {
	return Check{
		Name: CheckESNFull,
		Commands: []Command{
			{
				CLI:    cli,
				Prompt: prompt,
				Rules: []Rule{
					{
						Pattern: regexp.MustCompile(
							`\[Board Properties\]\n` +
								`BoardType=(?P<board_type>.*)\n` +
								`BarCode=(?P<bar_code>\S+)\n` +
								`Item=(?P<item>.*)\n` +
								`Description=(?P<description>.*)\n` +
								`Manufactured=(?P<manufactured>.*)`),
						Repeated: true,
						Column:   "board_esns",
						Template: "${board_type}: ${bar_code}",
						Join:     "; ",
						Filter: func(groups map[string]string) bool {
							return groups["board_type"] != "" && groups["bar_code"] != ""
						},
					},
				},
			},
		},
	}
}

// BoardsCheck 主控/业务板列表，电源风扇等槽位号非纯数字的板卡不计
// 单框无堆叠时（少于2块板）结果为空
func BoardsCheck(pattern *regexp.Regexp) Check {
	return Check{
		Name:    CheckBoards,
		Columns: []string{"main_boards_list"},
		Commands: []Command{
			{
				CLI: CmdDisplayDevice,
				Rules: []Rule{
					{
						Pattern:  pattern,
						Repeated: true,
						Column:   "main_boards_list",
						Template: "${index} - ${type}",
						Join:     ", ",
						Min:      2,
						Filter: func(groups map[string]string) bool {
							_, err := strconv.Atoi(groups["index"])
							return err == nil
						},
					},
				},
			},
		},
	}
}

// MACSummaryCheck MAC表容量与占用，回显字段顺序按平台不同
func MACSummaryCheck(pattern *regexp.Regexp) Check {
	return Check{
		Name:    CheckMACSummary,
		Columns: []string{"in_used", "capacity"},
		Commands: []Command{
			{
				CLI:   CmdDisplayMACSummary,
				Rules: []Rule{{Pattern: pattern}},
			},
		},
	}
}

// RoutesCheck 各路由协议的路由条数，未出现的协议记0
func RoutesCheck() Check {
	routeRule := func(pattern string) Rule {
		return Rule{Pattern: regexp.MustCompile(pattern), Default: "0"}
	}
	return Check{
		Name:    CheckRoutes,
		Columns: []string{"total", "bgp", "ospf", "isis", "static", "direct"},
		Commands: []Command{
			{
				CLI: CmdDisplayRoutesSummary,
				Rules: []Rule{
					routeRule(`\nTotal\s+(?P<total>\d+)`),
					routeRule(`\nDIRECT\s+(?P<direct>\d+)`),
					routeRule(`\nSTATIC\s+(?P<static>\d+)`),
					routeRule(`\nOSPF\s+(?P<ospf>\d+)`),
					routeRule(`\nIS.*?IS\s+(?P<isis>\d+)`),
					routeRule(`\nBGP\s+(?P<bgp>\d+)`),
				},
			},
		},
	}
}

// VRFCheck VPN实例总数与名称列表
func VRFCheck() Check {
	return Check{
		Name:    CheckVRF,
		Columns: []string{"vrf"},
		Commands: []Command{
			{
				CLI: CmdDisplayVPNInstance,
				Rules: []Rule{
					{
						Pattern: regexp.MustCompile(`Total VPN-Instances configured\s+:\s*(?P<vrf_total>\d+)`),
						Default: "0",
					},
					{
						Pattern:  regexp.MustCompile(`\n\s*(?P<vrf_name>\S+)\s+.*?\s+IPv`),
						Repeated: true,
						Column:   "vrf_names",
						Template: "${vrf_name}",
						Join:     ", ",
					},
				},
			},
		},
		Compose: func(fields map[string]string) {
			result := "VRF: " + fields["vrf_total"]
			if names := fields["vrf_names"]; names != "" {
				result += ": " + names
			}
			fields["vrf"] = result
			delete(fields, "vrf_total")
			delete(fields, "vrf_names")
		},
	}
}

// AccessUsersCheck 802.1x与MAB在线用户数，仅S系列支持
func AccessUsersCheck() Check {
	userRule := func(column string) Rule {
		return Rule{
			Pattern: regexp.MustCompile(`\n\s*Total\s*:\s*(?P<` + column + `>\d+)`),
			Confirm: regexp.MustCompile(`No online user`),
			Absent:  map[string]string{column: "No one"},
		}
	}
	return Check{
		Name:    CheckAccessUsers,
		Columns: []string{"mab_users_number", "dot1x_users_number"},
		Commands: []Command{
			{
				CLI:   "display access-user access-type dot1x",
				Rules: []Rule{userRule("dot1x_users_number")},
			},
			{
				CLI:   "display access-user access-type mac-authen",
				Rules: []Rule{userRule("mab_users_number")},
			},
		},
	}
}

// MemoryCheck 内存占用百分比，命令与回显格式按平台不同
func MemoryCheck(cli string, pattern *regexp.Regexp) Check {
	return Check{
		Name:    CheckMemory,
		Columns: []string{"memory_usage"},
		Commands: []Command{
			{
				CLI: cli,
				Rules: []Rule{
					{
						Pattern: pattern,
						Post: map[string]func(string) string{
							"memory_usage": func(v string) string { return v + "%" },
						},
					},
				},
			},
		},
	}
}
