package irc

// This file contains documentation for the IRC event handlers.
// The actual handler implementations are split across:
// - client.go: Session lifecycle (connect, join, disconnect), nick collisions
// - router.go: Channel traffic classification and forwarding
// - supervisor.go: The reconnect loop around the transport

/*
Handler Summary:

Session Lifecycle:
- connect callback (onConnect): Registration complete
  - Opens the per-channel chat log in append mode
  - Logs "[connected at <timestamp>]"
  - Issues JOIN for the configured channel (with key if set)
- JOIN (onJoin): Join confirmation
  - Only our own join of the configured channel counts
  - Logs "[I have joined <channel>]"
- disconnect callback (onDisconnect): Transport loss
  - Logs "[disconnected at <timestamp>]" and closes the chat log
  - Signals the supervisor; runs even if the session never fully set up

Channel Traffic (router.go):
- PRIVMSG (onPrivMsg): Public and private messages
  - Logs "<nick> text" with the nick stripped of user@host
  - Private messages (target is our nick) get the whisper refusal,
    never the dispatcher
  - Public messages are forwarded to the command dispatcher
- CTCP_ACTION (onAction): Logs "* nick text"
- NICK (onNickChange): Logs "old is now known as new"

Nick Issues:
- 433 (onNickCollision): ERR_NICKNAMEINUSE
- 437 (onNickCollision): ERR_UNAVAILRESOURCE
  - Appends the marker character to the last candidate and retries,
    bounded by nick_retry_limit; exhaustion is a fatal session error
*/
