package collect

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleExtractSingle(t *testing.T) {
	rule := Rule{
		Pattern: regexp.MustCompile(`version (?P<ver>\S+)`),
	}
	fields, err := rule.Extract("software version V200R005C10SPC800 running")
	require.NoError(t, err)
	assert.Equal(t, "V200R005C10SPC800", fields["ver"], "分组名即列名")
}

func TestRuleExtractFieldsMapping(t *testing.T) {
	rule := Rule{
		Pattern: regexp.MustCompile(`sysname (?P<name>\S+)`),
		Fields:  map[string]string{"name": "hostname"},
	}
	fields, err := rule.Extract("sysname ToR-R1")
	require.NoError(t, err)
	assert.Equal(t, "ToR-R1", fields["hostname"], "Fields映射重命名列")
	assert.NotContains(t, fields, "name")
}

func TestRuleExtractFallback(t *testing.T) {
	rule := Rule{
		Pattern:  regexp.MustCompile(`HUAWEI (?P<hw>\S+) uptime`),
		Fallback: regexp.MustCompile(`(?P<hw>\S+) uptime`),
	}
	fields, err := rule.Extract("USG6320 uptime is 1 day")
	require.NoError(t, err)
	assert.Equal(t, "USG6320", fields["hw"], "主正则未命中时使用候补正则")
}

func TestRuleExtractConfirmAbsent(t *testing.T) {
	rule := Rule{
		Pattern: regexp.MustCompile(`Patch Package Version\s*:\s*(?P<patch_version>\S+)`),
		Confirm: regexp.MustCompile(`No patch exists`),
		Absent:  map[string]string{"patch_version": "No patch"},
	}
	fields, err := rule.Extract("Info: No patch exists.\nThe current state is: Idle")
	require.NoError(t, err)
	assert.Equal(t, "No patch", fields["patch_version"], "确认无补丁时写入Absent值")
}

func TestRuleExtractDefault(t *testing.T) {
	rule := Rule{
		Pattern: regexp.MustCompile(`\nBGP\s+(?P<bgp>\d+)`),
		Default: "0",
	}
	fields, err := rule.Extract("Proto  total\nDIRECT  20\n")
	require.NoError(t, err)
	assert.Equal(t, "0", fields["bgp"], "协议未出现时记0")
}

func TestRuleExtractOptional(t *testing.T) {
	rule := Rule{
		Pattern:  regexp.MustCompile(`Stack mode\s*:\s*(?P<stack_mode>\S+)`),
		Optional: true,
	}
	fields, err := rule.Extract("Error: Unrecognized command")
	require.NoError(t, err)
	assert.Empty(t, fields, "Optional规则未命中不报错")
}

func TestRuleExtractNoMatch(t *testing.T) {
	rule := Rule{
		Pattern: regexp.MustCompile(`sysname (?P<hostname>\S+)`),
	}
	_, err := rule.Extract("nothing here")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRuleExtractRepeated(t *testing.T) {
	rule := Rule{
		Pattern:  regexp.MustCompile(`(?P<index>\S+)\s+-\s+(?P<type>\S+)`),
		Repeated: true,
		Column:   "boards",
		Template: "${index}/${type}",
		Join:     ", ",
	}
	fields, err := rule.Extract("1 - CE-MPUA\n2 - CE-SFU08F\n")
	require.NoError(t, err)
	assert.Equal(t, "1/CE-MPUA, 2/CE-SFU08F", fields["boards"])
}

func TestRuleExtractRepeatedFilterAndCount(t *testing.T) {
	rule := Rule{
		Pattern:  regexp.MustCompile(`(?P<index>\S+)\s+-\s+(?P<type>\S+)`),
		Repeated: true,
		Column:   "boards",
		Count:    "boards_number",
		Template: "${index}",
		Join:     ",",
		Filter: func(groups map[string]string) bool {
			return groups["index"] != "FAN1"
		},
	}
	fields, err := rule.Extract("1 - CE-MPUA\nFAN1 - FAN-12C\n2 - CE-SFU08F\n")
	require.NoError(t, err)
	assert.Equal(t, "1,2", fields["boards"], "Filter丢弃风扇槽位")
	assert.Equal(t, "2", fields["boards_number"])
}

func TestRuleExtractRepeatedMin(t *testing.T) {
	rule := Rule{
		Pattern:  regexp.MustCompile(`(?P<index>\d+)\s+-\s+(?P<type>\S+)`),
		Repeated: true,
		Column:   "boards",
		Template: "${index}",
		Join:     ",",
		Min:      2,
	}
	fields, err := rule.Extract("1 - CE6860EI\n")
	require.NoError(t, err)
	assert.Equal(t, "", fields["boards"], "单框设备不足Min条数时结果置空")
}

func TestRuleExtractRepeatedNeverErrors(t *testing.T) {
	rule := Rule{
		Pattern:  regexp.MustCompile(`(?P<esn>\d{10,})`),
		Repeated: true,
		Column:   "esn",
		Template: "${esn}",
		Join:     ", ",
	}
	fields, err := rule.Extract("no serial numbers at all")
	require.NoError(t, err)
	assert.Equal(t, "", fields["esn"], "零匹配的Repeated规则产出空值而非错误")
}

func TestRuleExtractPost(t *testing.T) {
	rule := Rule{
		Pattern: regexp.MustCompile(`Percentage Is\s*:\s*(?P<memory_usage>\d+)%`),
		Post: map[string]func(string) string{
			"memory_usage": func(v string) string { return v + "%" },
		},
	}
	fields, err := rule.Extract("Memory Using Percentage Is: 26%")
	require.NoError(t, err)
	assert.Equal(t, "26%", fields["memory_usage"])
}
