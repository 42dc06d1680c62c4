package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCheck 按采集器的方式执行检查项：逐命令逐规则提取，先写入者生效，最后Compose
func execCheck(t *testing.T, check Check, outputs map[string]string) map[string]string {
	t.Helper()
	fields := make(map[string]string)
	for _, cmd := range check.Commands {
		output, ok := outputs[cmd.CLI]
		require.True(t, ok, "测试缺少命令 %q 的回显", cmd.CLI)
		for i := range cmd.Rules {
			extracted, err := cmd.Rules[i].Extract(output)
			require.NoError(t, err, "命令 %q 规则 %d", cmd.CLI, i)
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
	return fields
}

const displayVersionCE = `Huawei Versatile Routing Platform Software
VRP (R) software, Version 8.180 (CE6860EI V200R005C10SPC800)
Copyright (C) 2012-2018 Huawei Technologies Co., Ltd.
HUAWEI CE6860-48S8CQ-EI uptime is 4 days, 8 hours, 22 minutes
Patch Version: V200R005SPH008`

const displayVersionS = `Huawei Versatile Routing Platform Software
VRP (R) software, Version 5.170 (S5720 V200R011C10SPC600)
Copyright (C) 2000-2018 HUAWEI TECH Co., Ltd.
HUAWEI S5720-52P-LI-AC Routing Switch uptime is 11 weeks, 5 days, 9 hours, 17 minutes`

func TestIdentifyHardware(t *testing.T) {
	assert.Equal(t, "CE6860-48S8CQ-EI", IdentifyHardware(displayVersionCE))
	assert.Equal(t, "S5720-52P-LI-AC", IdentifyHardware(displayVersionS))

	// 型号行无HUAWEI前缀时走候补正则
	noPrefix := "Copyright (C) 2019 Huawei Technologies Co., Ltd.\nUSG6320 uptime is 1 day, 2 hours"
	assert.Equal(t, "USG6320", IdentifyHardware(noPrefix))

	assert.Equal(t, "", IdentifyHardware("connection refused"))
}

func TestCommonCheck(t *testing.T) {
	outputs := map[string]string{
		"display version": displayVersionCE,
		"display patch": `Patch Package Name    :flash:/CE6860EI-V200R005SPH008.PAT
Patch Package Version :V200R005SPH008
Patch Package State   :Running
Patch Package Run Time:2020-03-03 12:38:44+03:00`,
		"display current-configuration | include sysname": "sysname AC-R4-CE6860-01",
	}
	fields := execCheck(t, CommonCheck(), outputs)
	assert.Equal(t, "AC-R4-CE6860-01", fields["hostname"])
	assert.Equal(t, "CE6860-48S8CQ-EI", fields["hardware"])
	assert.Equal(t, "V200R005C10SPC800", fields["software_version"])
	assert.Equal(t, "V200R005SPH008", fields["patch_version"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \(\w{3}\) \d{2}:\d{2}$`, fields["uptime"],
		"uptime换算为最后重启日期")
}

func TestCommonCheckNoPatch(t *testing.T) {
	outputs := map[string]string{
		"display version": displayVersionS,
		"display patch": `Info: No patch exists.
The state of the patch state file is: Idle
The current state is: Idle`,
		"display current-configuration | include sysname": "sysname ToR-R1",
	}
	fields := execCheck(t, CommonCheck(), outputs)
	assert.Equal(t, "No patch", fields["patch_version"])
	assert.Equal(t, "S5720-52P-LI-AC", fields["hardware"])
}

func TestLLDPCheck(t *testing.T) {
	output := `100GE1/0/1 has 1 neighbor(s):

Neighbor index                     :1
Chassis type                       :MAC Address
Chassis ID                         :7c1c-f152-5001
Port ID subtype                    :Interface Name
Port ID                            :100GE1/0/0
Port description                   :-D- AC-R4-CE6860-01 [100GE1/0/1] ---
System name                        :AG-R4-CE12804-01
System description                 :Huawei Versatile Routing Platform Software
Management address type            :IPv4
Management address                 :10.198.177.7
Expired time                       :98s

MEth0/0/0 has 1 neighbor(s):

Neighbor index                     :1
Port ID                            :GigabitEthernet0/0/1
System name                        :OOB-SW-01
System description                 :Huawei
Management address type            :IPv4
Management address                 :10.0.0.1
`
	fields := execCheck(t, LLDPCheck(), map[string]string{"display lldp neighbor": output})
	assert.Equal(t, "100GE1/0/1 -> AG-R4-CE12804-01 [100GE1/0/0] 10.198.177.7",
		fields["lldp_neighbors"], "管理口MEth上的邻居不计")
}

const displayStackTwoMembers = `Stack mode: Service-port
Stack topology type: Link
Stack system MAC: 0000-1382-4569
MAC switch delay time: 10 min
Stack reserved VLAN: 4093
Slot of the active management port: 0
Slot    Role        MAC address       Priority   Device type
-------------------------------------------------------------
 0   Master      0018-82b1-6eb4   200          S5720-28P-LI-AC
 1   Standby     0018-82b1-6eba   150          S5720-28P-LI-AC
`

func TestStackCheck(t *testing.T) {
	fields := execCheck(t, StackCheck(), map[string]string{"display stack": displayStackTwoMembers})
	assert.Equal(t, "topo: Link, members: 2", fields["stack_info"])
	assert.NotContains(t, fields, "stack_members", "中间字段在Compose后清除")
}

func TestStackCheckSingleMember(t *testing.T) {
	output := `Stack mode: Service-port
Stack topology type: Link
Stack system MAC: 2416-6d8e-c2a6
Slot    Role        MAC address       Priority   Device type
-------------------------------------------------------------
 0   Master      2416-6d8e-c2a6   200          S5720-28P-LI-AC
`
	fields := execCheck(t, StackCheck(), map[string]string{"display stack": output})
	assert.Equal(t, "", fields["stack_info"], "单机不算堆叠")
}

func TestStackCheckNotSupported(t *testing.T) {
	// CE单机没有堆叠摘要行，首条规则Optional放行
	fields := execCheck(t, StackCheck(), map[string]string{"display stack": "Error: Unrecognized command found"})
	assert.Equal(t, "", fields["stack_info"])
}

func TestChassisESNCheck(t *testing.T) {
	output := " 1 : 21980107682SJC600039\n 2 : 21980107682SJC600040\n"
	fields := execCheck(t, ChassisESNCheck(), map[string]string{"display esn": output})
	assert.Equal(t, "21980107682SJC600039, 21980107682SJC600040", fields["esn_chassis"])
}

func TestElabelCheck(t *testing.T) {
	output := `[Board Properties]
BoardType=S5720-28P-LI-AC
BarCode=21980107682SJC600039
Item=98010768
Description=S5720-28P-LI-AC(24 Ethernet 10/100/1000 ports,4 Gig SFP)
Manufactured=2018-12-19

[Board Properties]
BoardType=
BarCode=21021311081DC90000123
Item=0213
Description=Power module
Manufactured=2018-11-02
`
	check := ElabelCheck("display elabel", &Prompt{Expect: "[Y/N]", Send: "y"})
	fields := execCheck(t, check, map[string]string{"display elabel": output})
	assert.Equal(t, "S5720-28P-LI-AC: 21980107682SJC600039", fields["board_esns"],
		"板类型为空的电子标签不计")
}

func TestRoutesCheck(t *testing.T) {
	output := `Summary Prefixes : 635

Proto      route      active
DIRECT     20         20
STATIC     5          5
OSPF       100        90
BGP        500        480
Total      625        595
`
	fields := execCheck(t, RoutesCheck(), map[string]string{
		"display ip routing-table all-vpn-instance statistics": output,
	})
	assert.Equal(t, "625", fields["total"])
	assert.Equal(t, "20", fields["direct"])
	assert.Equal(t, "5", fields["static"])
	assert.Equal(t, "100", fields["ospf"])
	assert.Equal(t, "500", fields["bgp"])
	assert.Equal(t, "0", fields["isis"], "未出现的协议记0")
}

func TestVRFCheck(t *testing.T) {
	output := ` Total VPN-Instances configured      : 2

 VPN-Instance Name               RD                    Address-family
  mgmt                           100:1                 IPv4
  cust-a                         100:2                 IPv4
`
	fields := execCheck(t, VRFCheck(), map[string]string{"display ip vpn-instance": output})
	assert.Equal(t, "VRF: 2: mgmt, cust-a", fields["vrf"])
	assert.NotContains(t, fields, "vrf_total")
	assert.NotContains(t, fields, "vrf_names")
}

func TestVRFCheckEmpty(t *testing.T) {
	fields := execCheck(t, VRFCheck(), map[string]string{"display ip vpn-instance": ""})
	assert.Equal(t, "VRF: 0", fields["vrf"])
}

func TestAccessUsersCheck(t *testing.T) {
	dot1x := `------------------------------------------------------------------------------------------------------
UserID  Username               IP address                               MAC            Status
------------------------------------------------------------------------------------------------------
 Total: 53, printed: 48
`
	fields := execCheck(t, AccessUsersCheck(), map[string]string{
		"display access-user access-type dot1x":      dot1x,
		"display access-user access-type mac-authen": "Info: No online user.",
	})
	assert.Equal(t, "53", fields["dot1x_users_number"])
	assert.Equal(t, "No one", fields["mab_users_number"])
}

func TestCheckDefaults(t *testing.T) {
	defaults := CheckDefaults()
	assert.True(t, defaults[CheckCommon], "基础信息默认开启")
	assert.True(t, defaults[CheckStack], "堆叠检查默认开启")
	assert.False(t, defaults[CheckESNFull], "全量ESN耗时长，默认关闭")
	assert.False(t, defaults[CheckRoutes])

	// 返回副本，调用方修改不影响默认值
	defaults[CheckCommon] = false
	assert.True(t, CheckDefaults()[CheckCommon])
}
