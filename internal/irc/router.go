package irc

import (
	"fmt"
	"strings"

	"github.com/tonkon/tonkonbot/internal/telemetry"
)

// whisperReply is sent to anyone who messages the bot directly.
const whisperReply = "It isn't nice to whisper!  Play nice with the group."

// Dispatcher is the command-handling collaborator. Any reply it produces
// goes out on the connection handle it was constructed with.
type Dispatcher interface {
	Handle(sender, channel, text string)
}

// Router classifies inbound channel events and either logs them, replies
// directly, or forwards them to the command dispatcher.
type Router struct {
	// Self reports the bot's current nickname (it can change on collision).
	Self func() string
	// Log appends one line to the channel log.
	Log func(line string)
	// Reply sends a message to a nick or channel.
	Reply func(target, message string)
	// Dispatch receives every public channel message.
	Dispatch Dispatcher
}

// Message handles a PRIVMSG. Every message is logged; messages sent directly
// to the bot get the whisper refusal and are never dispatched, everything
// else is forwarded to the dispatcher.
func (r *Router) Message(source, target, text string) {
	nick := ShortName(source)
	r.Log(fmt.Sprintf("<%s> %s", nick, text))

	if strings.EqualFold(target, r.Self()) {
		telemetry.IncEvent("private")
		r.Reply(nick, whisperReply)
		return
	}

	telemetry.IncEvent("message")
	if r.Dispatch != nil {
		r.Dispatch.Handle(nick, target, text)
	}
}

// Action handles a CTCP ACTION ("/me" style narration).
func (r *Router) Action(source, target, text string) {
	telemetry.IncEvent("action")
	r.Log(fmt.Sprintf("* %s %s", ShortName(source), text))
}

// NickChange handles a NICK event.
func (r *Router) NickChange(source, newNick string) {
	telemetry.IncEvent("nick")
	r.Log(fmt.Sprintf("%s is now known as %s", ShortName(source), newNick))
}

// ShortName strips the user@host routing metadata from an IRC prefix,
// keeping only the display nick.
func ShortName(source string) string {
	if idx := strings.IndexByte(source, '!'); idx >= 0 {
		return source[:idx]
	}
	return source
}
