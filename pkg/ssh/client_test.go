package ssh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// fakeStdin 记录写入的内容并通知等待方
type fakeStdin struct {
	mu     sync.Mutex
	writes []string
	wrote  chan string
}

func newFakeStdin() *fakeStdin {
	return &fakeStdin{wrote: make(chan string, 8)}
}

func (f *fakeStdin) Write(p []byte) (int, error) {
	f.mu.Lock()
	f.writes = append(f.writes, string(p))
	f.mu.Unlock()
	f.wrote <- string(p)
	return len(p), nil
}

func (f *fakeStdin) Close() error { return nil }

// newShellClient 构造一个已连接的终端模式客户端，回显经 output 通道注入
func newShellClient(cfg *Config, stdin *fakeStdin) *Client {
	c := NewClient(cfg)
	c.conn = &ssh.Client{}
	c.session = &ssh.Session{}
	c.stdin = stdin
	c.output = make(chan []byte, 64)
	c.done = make(chan struct{})
	c.host = "192.0.2.10"
	return c
}

func TestRunReturnsAfterSettle(t *testing.T) {
	stdin := newFakeStdin()
	c := newShellClient(&Config{
		Mode:        ModeTerminal,
		SettleDelay: 20 * time.Millisecond,
		ReadTimeout: 2 * time.Second,
	}, stdin)

	go func() {
		<-stdin.wrote
		c.output <- []byte("HUAWEI S5720-52P-LI-AC ")
		time.Sleep(5 * time.Millisecond)
		c.output <- []byte("uptime is 1 week")
	}()

	out, err := c.Run(context.Background(), "display version")
	require.NoError(t, err)
	assert.Equal(t, "HUAWEI S5720-52P-LI-AC uptime is 1 week", out, "静默后拼出完整回显")
	assert.Equal(t, "display version\n", stdin.writes[0])
}

func TestRunPromptAnswersConfirmation(t *testing.T) {
	stdin := newFakeStdin()
	c := newShellClient(&Config{
		Mode:        ModeTerminal,
		SettleDelay: 20 * time.Millisecond,
		ReadTimeout: 2 * time.Second,
	}, stdin)

	go func() {
		<-stdin.wrote
		c.output <- []byte("Warning: It may take a long time, continue?[Y/N]:")
		<-stdin.wrote
		c.output <- []byte("\nBoard Properties\nBoardType=CE-L48GT-EC")
	}()

	out, err := c.RunPrompt(context.Background(), "display elabel", "[Y/N]", "y")
	require.NoError(t, err)
	assert.Contains(t, out, "[Y/N]")
	assert.Contains(t, out, "Board Properties", "应答之后的回显一并返回")
	require.Len(t, stdin.writes, 2)
	assert.Equal(t, "display elabel\n", stdin.writes[0])
	assert.Equal(t, "y\n", stdin.writes[1])
}

func TestRunReadTimeoutCap(t *testing.T) {
	stdin := newFakeStdin()
	c := newShellClient(&Config{
		Mode:        ModeTerminal,
		SettleDelay: 50 * time.Millisecond,
		ReadTimeout: 120 * time.Millisecond,
	}, stdin)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		<-stdin.wrote
		for i := 0; i < 40; i++ {
			select {
			case c.output <- []byte("log line\n"):
			case <-stop:
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	start := time.Now()
	out, err := c.Run(context.Background(), "display logbuffer")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "持续回显由总超时截断")
}

func TestRunNoSession(t *testing.T) {
	c := NewClient(&Config{Mode: ModeTerminal})
	_, err := c.Run(context.Background(), "display version")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRunReportsClosedSession(t *testing.T) {
	stdin := newFakeStdin()
	c := newShellClient(&Config{
		Mode:        ModeTerminal,
		SettleDelay: 200 * time.Millisecond,
		ReadTimeout: 2 * time.Second,
	}, stdin)

	go func() {
		<-stdin.wrote
		c.output <- []byte("HUAWEI S5720")
		close(c.output)
	}()

	out, err := c.Run(context.Background(), "display version")
	assert.ErrorIs(t, err, ErrSessionClosed, "传输层断开以错误上报而非静默返回")
	assert.Contains(t, out, "HUAWEI S5720", "已收到的部分回显保留")
}

type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	n := copy(p, []byte("log line\n"))
	return n, nil
}

func TestForwardOutputUnblocksOnClose(t *testing.T) {
	c := NewClient(&Config{Mode: ModeTerminal})
	c.output = make(chan []byte, 1)
	c.done = make(chan struct{})

	exited := make(chan struct{})
	done := c.done
	go func() {
		c.forwardOutput(endlessReader{}, done)
		close(exited)
	}()

	// 消费一块让转发继续，随后不再读取，转发方阻塞在发送上
	<-c.output
	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("forward goroutine still blocked after Close")
	}
}
