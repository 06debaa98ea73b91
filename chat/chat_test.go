package chat

import (
	"context"
	"strings"
	"testing"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/keylock"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/testutil"
	"github.com/onnwee/sokuji-bot/tracks"
)

type stubHandler struct {
	reqs    []bot.Request
	texts   []string
	handled bool
	err     error
}

func (h *stubHandler) HandleText(_ context.Context, req bot.Request, text string) (bool, error) {
	h.reqs = append(h.reqs, req)
	h.texts = append(h.texts, text)
	return h.handled, h.err
}

func privmsg(channel, userID, text string) twitch.PrivateMessage {
	return twitch.PrivateMessage{
		User:    twitch.User{ID: userID, Name: "viewer"},
		Channel: channel,
		ID:      "msg-1",
		Message: text,
	}
}

func TestChannelKey(t *testing.T) {
	for in, want := range map[string]string{
		"MK8DX":  "twitch:mk8dx",
		"#mk8dx": "twitch:mk8dx",
	} {
		if got := ChannelKey(in); got != want {
			t.Errorf("ChannelKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeToken(t *testing.T) {
	if got := normalizeToken("abc"); got != "oauth:abc" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeToken("oauth:abc"); got != "oauth:abc" {
		t.Fatalf("got %q", got)
	}
}

func TestHandleBuildsRequest(t *testing.T) {
	c := newFakeClient()
	h := &stubHandler{handled: true}
	l := &Listener{Client: c, Handler: h}

	l.handle(context.Background(), privmsg("MK8DX", "42", "1234"))
	l.handle(context.Background(), privmsg("MK8DX", "42", "   "))

	if len(h.reqs) != 1 {
		t.Fatalf("expected 1 handled message, got %d", len(h.reqs))
	}
	req := h.reqs[0]
	if req.ChannelID != "twitch:mk8dx" || req.UserID != "twitch:42" || req.MessageID != "msg-1" {
		t.Fatalf("unexpected request %+v", req)
	}
	if h.texts[0] != "1234" {
		t.Fatalf("text = %q", h.texts[0])
	}
}

func TestHandleRepliesWithErrorText(t *testing.T) {
	c := newFakeClient()
	h := &stubHandler{handled: true, err: sokuji.NewError(sokuji.CodeSessionNotFound)}
	l := &Listener{Client: c, Handler: h}

	l.handle(context.Background(), privmsg("mk8dx", "1", "%end"))

	if len(c.replies) != 1 || c.replies[0] != "Sokuji is not found in this channel. Start sokuji again." {
		t.Fatalf("replies = %v", c.replies)
	}
}

func TestLines(t *testing.T) {
	msg := render.Message{
		Content: "Ended the sokuji.",
		Embeds: []render.Embed{{
			Title:       "A - B",
			Description: "```ansi\n\x1b[0m 49:33\x1b[30m(+16)\x1b[0m```",
			Fields:      []render.Field{{Name: "Races", Value: "1/12"}},
		}},
	}
	got := Lines(msg)
	want := []string{"Ended the sokuji.", "A - B | 49:33(+16) | Races: 1/12"}
	if len(got) != len(want) {
		t.Fatalf("Lines = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinesTruncates(t *testing.T) {
	got := Lines(render.Message{Content: strings.Repeat("x", 600)})
	if len([]rune(got[0])) != maxMessage {
		t.Fatalf("length = %d", len([]rune(got[0])))
	}
}

func TestScoringOverChat(t *testing.T) {
	store := testutil.NewMemoryStore()
	b := &bot.Bot{
		Sessions:  store,
		Tracks:    &tracks.Service{Store: store},
		Locks:     keylock.New(nil),
		Messenger: Messenger{},
	}
	c := newFakeClient()
	l := &Listener{Client: c, Handler: b}
	ctx := context.Background()

	l.handle(ctx, privmsg("mk8dx", "1", "%v A B"))
	l.handle(ctx, privmsg("mk8dx", "1", "1234"))

	s, err := sokuji.LoadCurrent(ctx, store, "twitch:mk8dx")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Races) != 1 || s.Scores[0] != 49 || s.Scores[1] != 33 {
		t.Fatalf("unexpected session state races=%d scores=%v", len(s.Races), s.Scores)
	}
	if len(c.replies) != 2 {
		t.Fatalf("expected one threaded reply per message, got %v", c.replies)
	}
	if len(c.said) == 0 {
		t.Fatal("expected follow-up lines")
	}
}
