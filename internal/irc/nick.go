package irc

import "errors"

// nickMarker is appended to a colliding nickname to produce the next
// candidate, e.g. tonkon -> tonkon^ -> tonkon^^.
const nickMarker = "^"

// ErrNickExhausted is returned when every altered nickname within the retry
// limit was also taken.
var ErrNickExhausted = errors.New("could not register a nickname: retry limit reached")

// identity tracks the configured nickname and the candidate currently
// offered to the server for one connection attempt.
type identity struct {
	nick      string
	limit     int
	candidate string
	tries     int
}

func newIdentity(nick string, limit int) *identity {
	id := &identity{nick: nick, limit: limit}
	id.Reset()
	return id
}

// Reset starts a fresh connection attempt from the configured nickname.
func (id *identity) Reset() {
	id.candidate = id.nick
	id.tries = 0
}

// Next produces the next candidate after a collision.
func (id *identity) Next() (string, error) {
	if id.tries >= id.limit {
		return "", ErrNickExhausted
	}
	id.tries++
	id.candidate += nickMarker
	return id.candidate, nil
}
