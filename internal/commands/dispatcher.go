// Package commands implements the bot's command dispatcher. Public channel
// messages addressed as "<botnick>: ..." are recognized as commands; all
// replies go back out on the connection handle supplied at construction.
package commands

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tonkon/tonkonbot/internal/storage"
	"github.com/tonkon/tonkonbot/internal/telemetry"
)

const queueSize = 64

// timestampFormat matches the braindump date column.
const timestampFormat = "Mon Jan 02, 2006 at 15:04:05 GMT"

// ReplyFunc sends a message to a nick or channel on the live connection.
type ReplyFunc func(target, message string)

type request struct {
	sender  string
	channel string
	text    string
}

// Dispatcher consumes forwarded channel messages on a single worker
// goroutine so a slow command cannot stall event processing for the
// connection. Handle only enqueues.
type Dispatcher struct {
	self  func() string
	reply ReplyFunc
	db    *storage.DB

	mu     sync.Mutex
	closed bool

	queue chan request
	done  chan struct{}
}

// New creates a dispatcher and starts its worker. self reports the bot's
// live nickname, which users address and which can drift after a collision.
func New(self func() string, reply ReplyFunc, db *storage.DB) *Dispatcher {
	d := &Dispatcher{
		self:  self,
		reply: reply,
		db:    db,
		queue: make(chan request, queueSize),
		done:  make(chan struct{}),
	}
	go d.worker()
	return d
}

// Handle enqueues a public channel message for processing. It never blocks;
// if the queue is full the message is dropped with a warning. Messages
// arriving after Close are discarded.
func (d *Dispatcher) Handle(sender, channel, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- request{sender: sender, channel: channel, text: text}:
		telemetry.IncCommand()
	default:
		telemetry.IncCommandDropped()
		log.Printf("command queue full, dropping message from %s", sender)
	}
	telemetry.SetCommandQueueDepth(len(d.queue))
}

// Close drains the queue and stops the worker. Safe to call twice.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for req := range d.queue {
		d.process(req)
		telemetry.SetCommandQueueDepth(len(d.queue))
	}
}

// process runs one forwarded message to completion. Messages not addressed
// to the bot by name are ignored; the prefix check is case-sensitive and
// uses the bot's live nick.
func (d *Dispatcher) process(req request) {
	prefix := d.self() + ":"
	if !strings.HasPrefix(req.text, prefix) {
		return
	}
	rest := strings.TrimSpace(strings.TrimPrefix(req.text, prefix))

	fields := strings.Fields(rest)
	var cmd string
	if len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}

	switch cmd {
	case "braindump":
		d.cmdBraindump(req, strings.TrimSpace(strings.TrimPrefix(rest, fields[0])))
	case "recall":
		d.cmdRecall(req, fields[1:])
	case "help":
		d.cmdHelp(req)
	default:
		d.reply(req.channel, fmt.Sprintf("%s: I am a log bot", req.sender))
	}
}

func (d *Dispatcher) cmdBraindump(req request, topic string) {
	if topic == "" {
		d.reply(req.channel, fmt.Sprintf("%s: usage: %s: braindump <topic>", req.sender, d.self()))
		return
	}

	date := time.Now().UTC().Format(timestampFormat)
	if err := d.db.AddBraindump(date, topic); err != nil {
		log.Printf("braindump from %s failed: %v", req.sender, err)
		d.reply(req.channel, fmt.Sprintf("%s: sorry, I couldn't store that", req.sender))
		return
	}
	d.reply(req.channel, fmt.Sprintf("%s: noted", req.sender))
}

func (d *Dispatcher) cmdRecall(req request, args []string) {
	count := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			count = n
		}
	}

	dumps, err := d.db.RecentBraindumps(count)
	if err != nil {
		log.Printf("recall for %s failed: %v", req.sender, err)
		d.reply(req.channel, fmt.Sprintf("%s: sorry, I couldn't read my notes", req.sender))
		return
	}
	if len(dumps) == 0 {
		d.reply(req.channel, fmt.Sprintf("%s: nothing stored yet", req.sender))
		return
	}
	for _, dump := range dumps {
		d.reply(req.channel, fmt.Sprintf("[%s] %s", dump.Date, dump.Topic))
	}
}

func (d *Dispatcher) cmdHelp(req request) {
	d.reply(req.channel, fmt.Sprintf("%s: commands: braindump <topic>, recall [n], help", req.sender))
}
