package collect

// DefaultProfile 未识别平台的兜底采集档案
// 只包含与具体平台无关的检查项，平台特有的列在报表中置 N/A
type DefaultProfile struct{}

func (p *DefaultProfile) Name() string { return "default" }

func (p *DefaultProfile) Checks() []Check {
	return []Check{
		CommonCheck(),
		LLDPCheck(),
		StackCheck(),
		ChassisESNCheck(),
		RoutesCheck(),
		VRFCheck(),
	}
}
