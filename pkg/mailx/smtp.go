package mailx

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// DefaultSMTPTimeout bounds a single delivery attempt when the caller's
// context carries no earlier deadline.
const DefaultSMTPTimeout = 10 * time.Second

// SMTPConfig configures an SMTP relay. Auth is PLAIN when Username is set.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	RequireTLS bool
	Timeout    time.Duration
}

// SMTPSender sends messages through an SMTP relay.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer net.Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}
	return &SMTPSender{cfg: cfg}
}

// Send delivers msg in one SMTP session. Every read and write on the
// connection is bounded by ctx, so a relay that stops answering cannot
// hold the caller past its deadline.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = s.cfg.From
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.options(ctx)...)
	if err != nil {
		return fmt.Errorf("mailx: smtp client for %s: %w", s.addr(), err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mailx: smtp send to %s: %w", s.addr(), ctxErr)
		}
		return fmt.Errorf("mailx: smtp send to %s: %w", s.addr(), err)
	}
	return nil
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
}

func (s *SMTPSender) options(ctx context.Context) []gomail.Option {
	policy := gomail.TLSOpportunistic
	if s.cfg.RequireTLS {
		policy = gomail.TLSMandatory
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
		gomail.WithTLSPolicy(policy),
		gomail.WithDialContextFunc(func(dialCtx context.Context, network, address string) (net.Conn, error) {
			return s.dial(ctx, dialCtx, network, address)
		}),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// build turns msg into a multipart/alternative message, plain text first.
func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("%w: from: %w", ErrInvalidMessage, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: to: %w", ErrInvalidMessage, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.Text != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	default:
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

// dial opens the relay connection. The client's own dial context ends as
// soon as the handshake returns, so the connection is tied to sendCtx
// instead, which lives for the whole session.
func (s *SMTPSender) dial(sendCtx, dialCtx context.Context, network, address string) (net.Conn, error) {
	conn, err := s.dialer.DialContext(dialCtx, network, address)
	if err != nil {
		return nil, err
	}

	cc := &ctxConn{Conn: conn, ctx: sendCtx}
	if d, ok := sendCtx.Deadline(); ok {
		if err := conn.SetDeadline(d); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	cc.stop = context.AfterFunc(sendCtx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	return cc, nil
}

// ctxConn refuses IO once its context is done and never lets a deadline
// run past the context's.
type ctxConn struct {
	net.Conn
	ctx  context.Context
	stop func() bool
}

func (c *ctxConn) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *ctxConn) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

func (c *ctxConn) SetDeadline(t time.Time) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	if d, ok := c.ctx.Deadline(); ok && (t.IsZero() || d.Before(t)) {
		t = d
	}
	return c.Conn.SetDeadline(t)
}

func (c *ctxConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
