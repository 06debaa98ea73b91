package render

import (
	"net/url"
	"strings"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/sokuji"
)

// ChannelWidgetURL is the stream widget address bound to a channel.
func ChannelWidgetURL(base, channelID string) string {
	return strings.TrimRight(base, "/") + "/sokuji?channel_id=" + url.QueryEscape(channelID)
}

// UserWidgetURL is the stream widget address that follows a user across
// channels.
func UserWidgetURL(base, userID string) string {
	return strings.TrimRight(base, "/") + "/sokuji?user_id=" + url.QueryEscape(userID)
}

// ConfigPanel renders the options message posted next to the board.
func ConfigPanel(s *sokuji.Session, color int, widgetBase string) Message {
	ja := s.IsJa
	embed := Embed{
		Title: i18n.Sprintf(ja, "config_title"),
		Color: color,
		Fields: []Field{
			{Name: i18n.Sprintf(ja, "config_view"), Value: i18n.Sprintf(ja, "config_view_body")},
			{
				Name:  i18n.Sprintf(ja, "config_widget"),
				Value: i18n.Sprintf(ja, "config_widget_body", s.ChannelID, ChannelWidgetURL(widgetBase, s.ChannelID)),
			},
		},
	}

	lang := button(IDLangJA, "日本語", StylePrimary)
	if ja {
		lang = button(IDLangEN, "English", StylePrimary)
	}
	text := button(IDTextShow, i18n.Sprintf(ja, "label_show_text"), StylePrimary)
	if s.ShowText {
		text = button(IDTextHide, i18n.Sprintf(ja, "label_hide_text"), StylePrimary)
	}
	img := button(IDImageShow, i18n.Sprintf(ja, "label_show_image"), StylePrimary)
	if s.ShowImage {
		img = button(IDImageHide, i18n.Sprintf(ja, "label_hide_image"), StylePrimary)
	}

	mode := Component{
		Kind:        KindSelect,
		ID:          IDMode,
		Placeholder: i18n.Sprintf(ja, "label_mode"),
	}
	for _, m := range []sokuji.Mode{sokuji.ModeClassic, sokuji.ModeCompact} {
		mode.Options = append(mode.Options, SelectOption{
			Label:   i18n.Sprintf(ja, "mode_"+string(m)),
			Value:   string(m),
			Default: m == s.Mode,
		})
	}

	return Message{
		Embeds: []Embed{embed},
		Components: []Row{
			{lang, text, img},
			{mode},
			{
				button(IDWidget, i18n.Sprintf(ja, "config_widget"), StylePrimary),
				button(IDTags, i18n.Sprintf(ja, "label_edit_tags"), StyleSuccess),
				button(IDRaceNum, i18n.Sprintf(ja, "label_edit_race_num"), StyleSuccess),
			},
		},
	}
}

// WidgetReply lists the per-user widget URLs after registration.
func WidgetReply(isJa bool, userIDs []string, color int, widgetBase string) Message {
	parts := []string{i18n.Sprintf(isJa, "widget_body")}
	for _, id := range userIDs {
		parts = append(parts, i18n.Sprintf(isJa, "widget_user", id, UserWidgetURL(widgetBase, id)))
	}
	return Message{Embeds: []Embed{{
		Title:       i18n.Sprintf(isJa, "widget_title"),
		Description: strings.Join(parts, "\n"),
		Color:       color,
	}}}
}
