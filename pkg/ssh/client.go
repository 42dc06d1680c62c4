package ssh

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// 会话模式
const (
	ModeTerminal = "terminal"
	ModeExec     = "exec"
)

// Config SSH配置
type Config struct {
	// Mode terminal：交互式PTY，一条连接串行执行所有命令
	// exec：每条命令新建会话执行
	Mode string
	// ConnectTimeout 拨号与握手超时
	ConnectTimeout time.Duration
	// SettleDelay 回显静默判定间隔，无新数据达到该时长即认为命令结束
	SettleDelay time.Duration
	// ReadTimeout 单条命令回显的总等待上限
	ReadTimeout time.Duration
}

// ConnectionInfo SSH连接信息
type ConnectionInfo struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client 面向单台设备的SSH客户端，不做并发复用
type Client struct {
	config  *Config
	conn    *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	output  chan []byte
	done    chan struct{}
	mutex   sync.Mutex
	host    string
}

// NewClient 创建SSH客户端
func NewClient(config *Config) *Client {
	return &Client{config: config}
}

// Connect 连接设备，terminal模式下同时打开交互式shell
func (c *Client) Connect(ctx context.Context, info *ConnectionInfo) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.host = info.Host

	sshConfig := &ssh.ClientConfig{
		User:            info.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.config.ConnectTimeout,
		Config: ssh.Config{
			// 支持旧版本的密钥交换算法
			KeyExchanges: []string{
				"diffie-hellman-group14-sha256",
				"diffie-hellman-group14-sha1",
				"diffie-hellman-group1-sha1",
				"diffie-hellman-group-exchange-sha256",
				"diffie-hellman-group-exchange-sha1",
				"ecdh-sha2-nistp256",
				"ecdh-sha2-nistp384",
				"ecdh-sha2-nistp521",
			},
			// 支持旧版本的加密算法
			Ciphers: []string{
				"aes128-ctr",
				"aes192-ctr",
				"aes256-ctr",
				"aes128-gcm@openssh.com",
				"aes256-gcm@openssh.com",
				"aes128-cbc",
				"aes192-cbc",
				"aes256-cbc",
				"3des-cbc",
			},
			// 支持旧版本的MAC算法
			MACs: []string{
				"hmac-sha2-256-etm@openssh.com",
				"hmac-sha2-256",
				"hmac-sha1",
				"hmac-sha1-96",
			},
		},
		// 支持旧版本主机密钥算法
		HostKeyAlgorithms: []string{
			"ssh-rsa",
			"rsa-sha2-256",
			"rsa-sha2-512",
			"ecdsa-sha2-nistp256",
			"ecdsa-sha2-nistp384",
			"ecdsa-sha2-nistp521",
		},
	}

	if info.Password != "" {
		// 同时尝试 password 与 keyboard-interactive，提高与网络设备的兼容性
		sshConfig.Auth = []ssh.AuthMethod{
			ssh.Password(info.Password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = info.Password
				}
				return answers, nil
			}),
		}
	}

	port := info.Port
	if port == 0 {
		port = 22
	}
	address := fmt.Sprintf("%s:%d", info.Host, port)

	dialer := &net.Dialer{Timeout: c.config.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return classifyDialError(info.Host, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, sshConfig)
	if err != nil {
		conn.Close()
		return classifyHandshakeError(info.Host, err)
	}

	c.conn = ssh.NewClient(sshConn, chans, reqs)

	if c.config.Mode == ModeTerminal {
		if err := c.openShell(); err != nil {
			c.conn.Close()
			c.conn = nil
			return fmt.Errorf("failed to open shell on %s: %w", info.Host, err)
		}
		// 吞掉登录横幅与首个提示符
		c.readOutput(ctx, "")
	}

	return nil
}

// openShell 打开交互式PTY shell并启动回显读取
func (c *Client) openShell() error {
	session, err := c.conn.NewSession()
	if err != nil {
		return err
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("vt100", 500, 200, modes); err != nil {
		session.Close()
		return err
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return err
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return err
	}

	if err := session.Shell(); err != nil {
		session.Close()
		return err
	}

	c.session = session
	c.stdin = stdin
	c.output = make(chan []byte, 64)
	c.done = make(chan struct{})

	go c.forwardOutput(stdout, c.done)

	return nil
}

// forwardOutput 将shell回显逐块转发到输出通道
// Close 之后没有读取方，通过 done 退出，避免设备持续回显时永久阻塞
func (c *Client) forwardOutput(stdout io.Reader, done <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case c.output <- chunk:
			case <-done:
				return
			}
		}
		if err != nil {
			close(c.output)
			return
		}
	}
}

// Run 执行命令并返回完整回显
func (c *Client) Run(ctx context.Context, command string) (string, error) {
	return c.run(ctx, command, nil)
}

// RunPrompt 执行需要交互确认的命令
// 回显中出现 expect 时发送 send，返回交互前后的完整回显
func (c *Client) RunPrompt(ctx context.Context, command, expect, send string) (string, error) {
	if c.config.Mode != ModeTerminal {
		// exec模式无交互能力，按普通命令执行
		return c.run(ctx, command, nil)
	}
	return c.run(ctx, command, &promptAnswer{expect: expect, send: send})
}

// promptAnswer 命令交互应答
type promptAnswer struct {
	expect string
	send   string
}

func (c *Client) run(ctx context.Context, command string, prompt *promptAnswer) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return "", ErrNoSession
	}

	if c.config.Mode != ModeTerminal {
		return c.execCommand(command)
	}
	if c.session == nil {
		return "", ErrNoSession
	}

	if _, err := c.stdin.Write([]byte(command + "\n")); err != nil {
		return "", fmt.Errorf("failed to send command to %s: %w", c.host, err)
	}

	expect := ""
	if prompt != nil {
		expect = prompt.expect
	}
	output, expectSeen, err := c.readOutput(ctx, expect)
	if err != nil {
		return output, fmt.Errorf("connection to %s lost: %w", c.host, err)
	}
	if expectSeen {
		if _, err := c.stdin.Write([]byte(prompt.send + "\n")); err != nil {
			return output, fmt.Errorf("failed to answer prompt on %s: %w", c.host, err)
		}
		rest, _, err := c.readOutput(ctx, "")
		output += rest
		if err != nil {
			return output, fmt.Errorf("connection to %s lost: %w", c.host, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return output, err
	}
	return output, nil
}

// execCommand exec模式：新会话执行单条命令
func (c *Client) execCommand(command string) (string, error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session on %s: %w", c.host, err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), fmt.Errorf("failed to execute %q on %s: %w", command, c.host, err)
	}
	return string(output), nil
}

// readOutput 读取回显直到静默或总超时
// expect 非空时，回显中出现该子串即停止并返回 expectSeen=true
// 输出通道被关闭（传输层断开）时返回 ErrSessionClosed 与已收到的部分回显
func (c *Client) readOutput(ctx context.Context, expect string) (string, bool, error) {
	deadline := time.NewTimer(c.config.ReadTimeout)
	defer deadline.Stop()
	idle := time.NewTimer(c.config.SettleDelay)
	defer idle.Stop()

	var b strings.Builder
	for {
		select {
		case <-ctx.Done():
			return b.String(), false, nil
		case <-deadline.C:
			return b.String(), false, nil
		case chunk, ok := <-c.output:
			if !ok {
				return b.String(), false, ErrSessionClosed
			}
			b.Write(chunk)
			if expect != "" && strings.Contains(b.String(), expect) {
				return b.String(), true, nil
			}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(c.config.SettleDelay)
		case <-idle.C:
			// 尚无任何回显时继续等待，直到总超时
			if b.Len() > 0 {
				return b.String(), false, nil
			}
			idle.Reset(c.config.SettleDelay)
		}
	}
}

// Close 关闭会话与连接，尽力而为，错误只记录不上抛
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	if c.session != nil {
		if err := c.session.Close(); err != nil && err != io.EOF {
			logger.Debugf("close session on %s: %v", c.host, err)
		}
		c.session = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			logger.Debugf("close connection to %s: %v", c.host, err)
		}
		c.conn = nil
	}
}
