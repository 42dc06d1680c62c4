package collect

import (
	"regexp"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Profile{
		"default": &DefaultProfile{},
	}
)

// platformMatcher 硬件型号到平台类别的匹配项
type platformMatcher struct {
	class   string
	pattern *regexp.Regexp
}

// 顺序敏感：CE 必须先于 S 判定，
// 型号 CE6860-48S8CQ-EI 同时命中 CE 与 S\d+，按声明顺序取 CE
var platformMatchers = []platformMatcher{
	{"CE", regexp.MustCompile(`CE`)},
	{"S", regexp.MustCompile(`S\d+`)},
	{"USG", regexp.MustCompile(`USG`)},
}

// Classify 根据硬件型号判定平台类别，首个命中生效
// 无法判定时返回空串，Get 会回退到默认档案
func Classify(hardware string) string {
	for _, m := range platformMatchers {
		if m.pattern.MatchString(hardware) {
			return m.class
		}
	}
	return ""
}

// Register 注册平台采集档案
func Register(name string, profile Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = profile
}

// Get 获取指定平台的采集档案，未注册时回退到默认档案
func Get(name string) Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if p, ok := registry[name]; ok {
		return p
	}
	return registry["default"]
}
