package render

import (
	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/tracks"
)

// TrackCard answers a message that named a track.
func TrackCard(t tracks.Track, isJa bool, color int) Message {
	return Message{Embeds: []Embed{{
		Title:       t.Name,
		Description: "`" + t.Abbr + "`",
		Color:       color,
		Fields:      []Field{{Name: i18n.Sprintf(isJa, "label_cup"), Value: t.Cup, Inline: true}},
	}}}
}
