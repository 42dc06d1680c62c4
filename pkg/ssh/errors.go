package ssh

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrNoSession 未建立连接时执行命令
var ErrNoSession = errors.New("ssh session not established")

// ErrSessionClosed 命令执行过程中传输层被对端关闭
var ErrSessionClosed = errors.New("ssh session closed by remote")

// AuthError 认证失败
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TimeoutError 连接超时
type TimeoutError struct {
	Host string
	Err  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("connection to %s timed out: %v", e.Host, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// AddrError 地址不可达或无法解析
type AddrError struct {
	Host string
	Err  error
}

func (e *AddrError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Host, e.Err)
}

func (e *AddrError) Unwrap() error { return e.Err }

// classifyDialError 区分拨号失败的原因
func classifyDialError(host string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Host: host, Err: err}
	}
	return &AddrError{Host: host, Err: err}
}

// classifyHandshakeError 区分握手失败的原因
func classifyHandshakeError(host string, err error) error {
	if strings.Contains(err.Error(), "unable to authenticate") ||
		strings.Contains(err.Error(), "auth") {
		return &AuthError{Host: host, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Host: host, Err: err}
	}
	return fmt.Errorf("ssh handshake with %s failed: %w", host, err)
}
