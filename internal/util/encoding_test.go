package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeDeviceOutputUTF8(t *testing.T) {
	assert.Equal(t, "display version", DecodeDeviceOutput([]byte("display version")))
	assert.Equal(t, "", DecodeDeviceOutput(nil))
}

func TestDecodeDeviceOutputGBK(t *testing.T) {
	// "错误" 的GBK编码
	gbk := []byte{0xB4, 0xED, 0xCE, 0xF3}
	assert.Equal(t, "错误", DecodeDeviceOutput(gbk))
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", NormalizeNewlines("a\r\nb\rc\r\n"))
	assert.Equal(t, "no changes", NormalizeNewlines("no changes"))
}
