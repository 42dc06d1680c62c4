package huawei_ce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcollector/fleetcollector/addone/collect"
)

func TestPluginRegistered(t *testing.T) {
	assert.Equal(t, "CE", collect.Get("CE").Name())
}

func TestBoardsPattern(t *testing.T) {
	output := `CE12808's Device status:
-------------------------------------------------------------------------------------------
Slot  Card   Type                     Online   Power Register     Alarm     Primary
-------------------------------------------------------------------------------------------
1     -      CE-L12CQ-FD              Present  On    Registered   Normal    NA
9     -      CE-MPUA                  Present  On    Registered   Normal    Master
10    -      CE-MPUA                  Present  On    Registered   Normal    Slave
13    -      CE-SFU08F                Present  On    Registered   Normal    NA
PWR1  -      PHD-3000WA               Present  On    Registered   Normal    NA
FAN1  -      FAN-12C                  Present  On    Registered   Normal    NA
-------------------------------------------------------------------------------------------
`
	check := collect.BoardsCheck(boardsPattern)
	fields, err := check.Commands[0].Rules[0].Extract(output)
	require.NoError(t, err)
	assert.Equal(t, "1 - CE-L12CQ-FD, 9 - CE-MPUA, 10 - CE-MPUA, 13 - CE-SFU08F",
		fields["main_boards_list"], "电源与风扇槽位不计")
}

func TestMACSummaryPattern(t *testing.T) {
	output := `Summary information of slot 1:
Capacity of this slot : 139264
-----------------------------------
Static     :               0
Blackhole  :               0
Dyn-Local  :               1
Evn        :               4
In-used    :               5
-----------------------------------
`
	check := collect.MACSummaryCheck(macSummaryPattern)
	fields, err := check.Commands[0].Rules[0].Extract(output)
	require.NoError(t, err)
	assert.Equal(t, "139264", fields["capacity"])
	assert.Equal(t, "5", fields["in_used"])
}

func TestMemoryPattern(t *testing.T) {
	output := `Memory utilization statistics at 2020-04-15 13:30:54 763 ms
System Total Memory: 1976072 Kbytes
Total Memory Used: 1157068 Kbytes
Memory Using Percentage: 58%
State: Non-overload
`
	check := collect.MemoryCheck("display memory", memoryPattern)
	fields, err := check.Commands[0].Rules[0].Extract(output)
	require.NoError(t, err)
	assert.Equal(t, "58%", fields["memory_usage"])
}

func TestChecksHaveNoAccessUsers(t *testing.T) {
	for _, check := range (&Plugin{}).Checks() {
		assert.NotEqual(t, collect.CheckAccessUsers, check.Name,
			"CE系列不支持接入用户统计")
	}
}
