package irc

import (
	"crypto/tls"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/google/uuid"

	"github.com/tonkon/tonkonbot/internal/chatlog"
	"github.com/tonkon/tonkonbot/internal/config"
	"github.com/tonkon/tonkonbot/internal/telemetry"
)

// session is the state owned by one live transport connection. A fresh one
// is created each time registration completes and destroyed on transport
// loss; its logger appends to the same per-channel path across sessions.
type session struct {
	id        string
	startedAt time.Time
	logger    *chatlog.Logger
}

// Client represents the IRC bot client
type Client struct {
	conn     *ircevent.Connection
	cfg      *config.Config
	identity *identity
	router   *Router

	// Dispatcher receives every public channel message. Set it before the
	// first Connect.
	Dispatcher Dispatcher

	mu       sync.RWMutex
	session  *session
	fatalErr error
	closed   bool

	disconnected chan struct{}
}

// NewClient creates a new IRC client
func NewClient(cfg *config.Config) (*Client, error) {
	c := &Client{
		cfg:          cfg,
		identity:     newIdentity(cfg.Nick, cfg.NickRetryLimit),
		disconnected: make(chan struct{}, 1),
	}

	tlsConfig := &tls.Config{ServerName: cfg.Server}
	if cfg.TLSInsecure {
		log.Printf("WARNING: tls_insecure is set, accepting any server certificate")
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	conn := &ircevent.Connection{
		Server:      fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		Nick:        cfg.Nick,
		User:        cfg.Username,
		RealName:    cfg.IRCName,
		QuitMessage: "Shutting down",
		Debug:       false,
		UseTLS:      cfg.UseTLS,
		TLSConfig:   tlsConfig,
	}
	c.conn = conn

	c.router = &Router{
		Self:  c.CurrentNick,
		Log:   c.logLine,
		Reply: c.Reply,
	}

	// Register handlers
	c.registerHandlers()

	return c, nil
}

func (c *Client) registerHandlers() {
	// Registration complete
	c.conn.AddConnectCallback(c.onConnect)

	// Transport loss
	c.conn.AddDisconnectCallback(c.onDisconnect)

	// Channel traffic
	c.conn.AddCallback("PRIVMSG", c.onPrivMsg)
	c.conn.AddCallback("CTCP_ACTION", c.onAction)
	c.conn.AddCallback("NICK", c.onNickChange)
	c.conn.AddCallback("JOIN", c.onJoin)
}

// Connect initiates one transport attempt. The supervisor owns retries.
func (c *Client) Connect() error {
	c.identity.Reset()
	c.router.Dispatch = c.Dispatcher
	if err := c.conn.Connect(); err != nil {
		return err
	}

	// Connect installs the library's own 433/437 fallback, which would send
	// a competing NICK with an underscore suffix after ours. Replace it so
	// only the marker-based candidates reach the wire.
	c.conn.ClearCallback("433")
	c.conn.ClearCallback("437")
	c.conn.AddCallback("433", c.onNickCollision) // ERR_NICKNAMEINUSE
	c.conn.AddCallback("437", c.onNickCollision) // ERR_UNAVAILRESOURCE

	return nil
}

// Disconnected signals once per transport teardown.
func (c *Client) Disconnected() <-chan struct{} {
	return c.disconnected
}

// Err reports a fatal session error, if any.
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fatalErr
}

// Quitting reports whether a clean shutdown was requested.
func (c *Client) Quitting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Quit disconnects from IRC
func (c *Client) Quit(message string) {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.conn.Quit()
}

// Reply sends a message to a nick or channel on the live connection.
func (c *Client) Reply(target, message string) {
	c.conn.Privmsg(target, message)
}

// CurrentNick reports the nickname the bot is visible under, which can
// drift from the configured one after a collision. Before registration it
// falls back to the configured nick.
func (c *Client) CurrentNick() string {
	if nick := c.conn.CurrentNick(); nick != "" {
		return nick
	}
	return c.cfg.Nick
}

func (c *Client) onConnect(e ircmsg.Message) {
	logger, err := chatlog.Open(filepath.Join(c.cfg.LogDir, c.cfg.Channel))
	if err != nil {
		c.fail(err)
		return
	}

	sess := &session{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		logger:    logger,
	}
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	telemetry.IncConnect()
	log.Printf("session %s: registered as %s on %s", sess.id, c.conn.CurrentNick(), c.conn.Server)

	c.logLine(connectedLine(sess.startedAt))

	// Join the configured channel
	if c.cfg.Key != "" {
		c.conn.Send("JOIN", c.cfg.Channel, c.cfg.Key)
	} else {
		c.conn.Send("JOIN", c.cfg.Channel)
	}
}

func (c *Client) onJoin(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	// Only our own join of the configured channel completes the handshake
	if !strings.EqualFold(ShortName(e.Source), c.conn.CurrentNick()) {
		return
	}
	if !strings.EqualFold(e.Params[0], c.cfg.Channel) {
		return
	}
	log.Printf("joined %s", e.Params[0])
	c.logLine(joinedLine(e.Params[0]))
}

func (c *Client) onDisconnect(e ircmsg.Message) {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()

	telemetry.IncDisconnect()

	// The logger may never have opened if the session died during setup
	if sess != nil {
		if err := sess.logger.Log(disconnectedLine(time.Now())); err != nil {
			log.Printf("session %s: could not write disconnect line: %v", sess.id, err)
		}
		if err := sess.logger.Close(); err != nil {
			log.Printf("session %s: could not close chat log: %v", sess.id, err)
		}
		log.Printf("session %s: disconnected after %s", sess.id, time.Since(sess.startedAt).Round(time.Second))
	}

	select {
	case c.disconnected <- struct{}{}:
	default:
	}
}

func (c *Client) onPrivMsg(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	c.router.Message(e.Source, e.Params[0], e.Params[1])
}

func (c *Client) onAction(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	c.router.Action(e.Source, e.Params[0], e.Params[1])
}

func (c *Client) onNickChange(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	c.router.NickChange(e.Source, e.Params[0])
}

func (c *Client) onNickCollision(e ircmsg.Message) {
	// Collisions are only resolved while registering; once the server has
	// accepted a nick, a 433 for some later rename must not burn retries
	// or tear down a healthy session.
	if c.conn.CurrentNick() != "" {
		return
	}

	next, err := c.identity.Next()
	if err != nil {
		c.fail(err)
		return
	}
	log.Printf("nickname in use, trying %s", next)
	c.conn.SetNick(next)
}

// logLine appends one line to the current session's channel log. A write
// failure is fatal: the bot prefers crashing over silently dropping lines.
func (c *Client) logLine(line string) {
	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()

	if sess == nil {
		return
	}
	if err := sess.logger.Log(line); err != nil {
		c.fail(err)
	}
}

// fail records the first fatal session error and tears the connection down
// so the supervisor can surface it.
func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.fatalErr == nil {
		c.fatalErr = err
	}
	c.mu.Unlock()

	log.Printf("fatal session error: %v", err)
	c.conn.Quit()
}

func connectedLine(t time.Time) string {
	return fmt.Sprintf("[connected at %s]", t.Format(time.ANSIC))
}

func disconnectedLine(t time.Time) string {
	return fmt.Sprintf("[disconnected at %s]", t.Format(time.ANSIC))
}

func joinedLine(channel string) string {
	return fmt.Sprintf("[I have joined %s]", channel)
}
