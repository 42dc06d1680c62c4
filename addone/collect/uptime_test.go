package collect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConvertUptimeToSince(t *testing.T) {
	now := time.Date(2020, 3, 18, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2020-03-14 (Sat) 03:38",
		ConvertUptimeToSince("4 days, 8 hours, 22 minutes", now))

	assert.Equal(t, "2019-12-27 (Fri) 02:43",
		ConvertUptimeToSince("11 weeks, 5 days, 9 hours, 17 minutes", now))

	// 单数形式的时间单位
	assert.Equal(t, "2020-03-11 (Wed) 11:59",
		ConvertUptimeToSince("1 week, 1 minute", now))
}

func TestConvertUptimeToSinceInvalid(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "N/A for 'garbage'", ConvertUptimeToSince("garbage", now))
	assert.Equal(t, "N/A for ''", ConvertUptimeToSince("", now))
}
