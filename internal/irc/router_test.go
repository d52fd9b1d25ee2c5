package irc

import (
	"strings"
	"testing"
)

type dispatchCall struct {
	sender  string
	channel string
	text    string
}

type fakeDispatcher struct {
	calls []dispatchCall
}

func (f *fakeDispatcher) Handle(sender, channel, text string) {
	f.calls = append(f.calls, dispatchCall{sender, channel, text})
}

type reply struct {
	target  string
	message string
}

// testRouter collects log lines and replies instead of touching a connection.
func testRouter(self string) (*Router, *[]string, *[]reply, *fakeDispatcher) {
	var lines []string
	var replies []reply
	disp := &fakeDispatcher{}

	r := &Router{
		Self:     func() string { return self },
		Log:      func(line string) { lines = append(lines, line) },
		Reply:    func(target, message string) { replies = append(replies, reply{target, message}) },
		Dispatch: disp,
	}
	return r, &lines, &replies, disp
}

func TestPublicMessageLoggedAndForwarded(t *testing.T) {
	r, lines, replies, disp := testRouter("tonkon")

	r.Message("alice!alice@example.net", "test", "hello")

	if len(*lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(*lines))
	}
	if (*lines)[0] != "<alice> hello" {
		t.Errorf("Unexpected log line: %q", (*lines)[0])
	}
	if len(*replies) != 0 {
		t.Errorf("Public message should not trigger a reply, got %v", *replies)
	}
	if len(disp.calls) != 1 {
		t.Fatalf("Expected 1 dispatch, got %d", len(disp.calls))
	}
	want := dispatchCall{"alice", "test", "hello"}
	if disp.calls[0] != want {
		t.Errorf("Expected dispatch %v, got %v", want, disp.calls[0])
	}
}

func TestPrivateMessageRefused(t *testing.T) {
	r, lines, replies, disp := testRouter("tonkon")

	r.Message("bob!bob@example.net", "tonkon", "psst")

	if len(*lines) != 1 || (*lines)[0] != "<bob> psst" {
		t.Errorf("Private message should still be logged, got %v", *lines)
	}
	if len(disp.calls) != 0 {
		t.Errorf("Private message must never reach the dispatcher, got %v", disp.calls)
	}
	if len(*replies) != 1 {
		t.Fatalf("Expected 1 reply, got %d", len(*replies))
	}
	if (*replies)[0].target != "bob" {
		t.Errorf("Reply should go to bob, got %q", (*replies)[0].target)
	}
	if (*replies)[0].message != "It isn't nice to whisper!  Play nice with the group." {
		t.Errorf("Unexpected refusal text: %q", (*replies)[0].message)
	}
}

func TestActionLogged(t *testing.T) {
	r, lines, replies, disp := testRouter("tonkon")

	r.Action("alice!alice@example.net", "test", "waves")

	if len(*lines) != 1 || (*lines)[0] != "* alice waves" {
		t.Errorf("Unexpected action log: %v", *lines)
	}
	if len(disp.calls) != 0 || len(*replies) != 0 {
		t.Errorf("Actions are log-only")
	}
}

func TestNickChangeLogged(t *testing.T) {
	r, lines, _, disp := testRouter("tonkon")

	r.NickChange("alice!alice@example.net", "alicia")

	if len(*lines) != 1 || (*lines)[0] != "alice is now known as alicia" {
		t.Errorf("Unexpected nick-change log: %v", *lines)
	}
	if len(disp.calls) != 0 {
		t.Errorf("Nick changes are log-only")
	}
}

func TestNilDispatcherIgnored(t *testing.T) {
	r, lines, _, _ := testRouter("tonkon")
	r.Dispatch = nil

	r.Message("alice!alice@example.net", "test", "hello")

	if len(*lines) != 1 {
		t.Errorf("Message should still be logged without a dispatcher")
	}
}

func TestShortName(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"alice!alice@example.net", "alice"},
		{"bob!~bob@10.0.0.1", "bob"},
		{"carol", "carol"},
		{"", ""},
	}

	for _, c := range cases {
		if got := ShortName(c.source); got != c.want {
			t.Errorf("ShortName(%q): expected %q, got %q", c.source, c.want, got)
		}
	}
}

func TestWhisperReplyStable(t *testing.T) {
	// The refusal text is part of the bot's user-visible contract.
	want := "It isn't nice to whisper!  Play nice with the group."
	if whisperReply != want {
		t.Errorf("whisperReply changed: %q", whisperReply)
	}
	// Guard the double space specifically; it is easy to "fix" by accident.
	if !strings.Contains(whisperReply, "whisper!  Play") {
		t.Errorf("whisperReply lost its double space: %q", whisperReply)
	}
}
