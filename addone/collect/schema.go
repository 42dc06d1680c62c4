package collect

// Column 报表列定义
type Column struct {
	Key     string
	Title   string
	Width   float64
	Comment string
}

// reportColumns 报表列顺序固定，所有记录按此顺序输出
var reportColumns = []Column{
	{"hostname", "Hostname", 39, "Got using 'display cur | i sysname' command"},
	{"mgmt_ip", "MGMT IP", 17, ""},
	{"hardware", "Hardware", 21, "Got using 'display version' command"},
	{"software_version", "Software version", 21, ""},
	{"patch_version", "Patch version", 20, ""},
	{"uptime", "Last reboot date", 22, "Calculated using 'display version' command.\nFormat: YEAR-MONTH-DAY"},
	{"esn_chassis", "ESN Chassis", 24, "ESN of chassis, got using 'display esn' command"},
	{"main_boards_list", "Boards", 22, "Boards from 'display device' output excepting Power and Fan boards"},
	{"stack_info", "Stack", 17, ""},
	{"in_used", "MAC Used", 10, "In-used mac-address from 'display mac-address summary' command's output"},
	{"capacity", "MAC Capacity", 10, ""},
	{"memory_usage", "Memory Usage", 10, "Memory Usage in percentage"},
	{"mab_users_number", "MAB users", 10, "Total number of MAB users, got using 'display access-user access-type mac-authen' command. For S switches only."},
	{"dot1x_users_number", "802.1x users", 10, "Total number of 802.1x users, got using 'display access-user access-type dot1x' command. For S switches only."},
	{"vrf", "VRF", 15, ""},
	{"total", "Total Routes", 6, "Column 'total routes' from 'display ip routing-table all-vpn-instance statistics' command's output"},
	{"bgp", "BGP", 6, ""},
	{"ospf", "OSPF", 6, ""},
	{"isis", "IS-IS", 6, ""},
	{"static", "Static", 6, ""},
	{"direct", "Direct", 6, ""},
	{"updated", "Updated", 24, "Date when information about this device was collected last time."},
}

// Schema 返回报表列定义（副本，调用方可安全修改）
func Schema() []Column {
	cols := make([]Column, len(reportColumns))
	copy(cols, reportColumns)
	return cols
}

// 采集失败与平台不适用的占位值
const (
	ValueError = "Error"
	ValueNA    = "N/A"
)
