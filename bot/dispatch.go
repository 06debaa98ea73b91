package bot

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/onnwee/sokuji-bot/sokuji"
)

// Prefixes that mark a text command.
var Prefixes = []string{"%", "％"}

var (
	commandLine  = regexp.MustCompile(`^(\S*)\s*([\S\s]*)$`)
	startCommand = regexp.MustCompile(`^(?:sokuji|start|cal|vs|v)(\d?)$`)
)

type textCommand func(ctx context.Context, b *Bot, req Request, arg string) error

func aliases(cmd textCommand, names ...string) map[string]textCommand {
	m := make(map[string]textCommand, len(names))
	for _, n := range names {
		m[n] = cmd
	}
	return m
}

func hint(key string) textCommand {
	return func(ctx context.Context, b *Bot, req Request, _ string) error {
		return b.Hint(ctx, req, key)
	}
}

var textCommands = func() map[string]textCommand {
	m := map[string]textCommand{}
	for _, group := range []map[string]textCommand{
		aliases(func(ctx context.Context, b *Bot, req Request, _ string) error { return b.End(ctx, req) }, "end"),
		aliases(func(ctx context.Context, b *Bot, req Request, _ string) error { return b.Now(ctx, req) }, "now"),
		aliases(func(ctx context.Context, b *Bot, req Request, arg string) error { return b.EditTrackText(ctx, req, arg) }, "track", "t"),
		aliases(func(ctx context.Context, b *Bot, req Request, arg string) error { return b.EditRanksText(ctx, req, arg) }, "race", "ranks", "rank"),
		aliases(func(ctx context.Context, b *Bot, req Request, _ string) error { return b.Back(ctx, req) }, "back", "undo"),
		aliases(func(ctx context.Context, b *Bot, req Request, arg string) error {
			return b.AddOther(ctx, req, ReasonRepick, DefaultRepickScore, arg)
		}, "repick", "re"),
		aliases(hint("tags_hint"), "tag", "tags"),
		aliases(hint("race_num_hint"), "totalracenum", "racenum", "trn", "rn"),
		aliases(hint("language_hint"), "japanize", "japanese", "japan", "jp", "ja", "englishize", "english", "en"),
		aliases(func(ctx context.Context, b *Bot, req Request, _ string) error {
			return b.RegisterWidget(ctx, req, req.Mentions, false)
		}, "widget", "banner", "obs", "o"),
		aliases(func(ctx context.Context, b *Bot, req Request, arg string) error { return b.SetNick(ctx, req, arg) }, "nick"),
		aliases(func(ctx context.Context, b *Bot, req Request, arg string) error { return b.ClearNick(ctx, req, arg) }, "unnick"),
	} {
		for k, v := range group {
			m[k] = v
		}
	}
	return m
}()

// ParseCommand splits a prefixed message into its lowercased command and
// argument. ok is false for messages without a prefix.
func ParseCommand(text string) (command, arg string, ok bool) {
	match := commandLine.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return "", "", false
	}
	head := strings.ToLower(match[1])
	for _, p := range Prefixes {
		if rest, found := strings.CutPrefix(head, p); found {
			return rest, match[2], true
		}
	}
	return "", "", false
}

// HandleText routes a plain chat message: prefixed commands first, then
// track names, then score input. It reports whether the message was
// consumed; a returned error has already been counted and logged and should
// be answered with ErrorText.
func (b *Bot) HandleText(ctx context.Context, req Request, text string) (bool, error) {
	if command, arg, ok := ParseCommand(text); ok {
		if handled, err := b.runCommand(ctx, req, command, arg); handled {
			return true, err
		}
	}
	if handled, err := b.TrackMessage(ctx, req, text); handled || err != nil {
		return handled, err
	}
	return b.ScoreText(ctx, req, text)
}

func (b *Bot) runCommand(ctx context.Context, req Request, command, arg string) (bool, error) {
	if m := startCommand.FindStringSubmatch(command); m != nil {
		format := 0
		if m[1] != "" {
			format, _ = strconv.Atoi(m[1])
			if !sokuji.ValidFormat(format) {
				return true, sokuji.NewError(sokuji.CodeInvalidFormat)
			}
		}
		return true, b.Start(ctx, req, StartInput{Format: format, Tags: strings.Fields(arg)})
	}
	cmd, ok := textCommands[command]
	if !ok {
		return false, nil
	}
	return true, cmd(ctx, b, req, arg)
}
