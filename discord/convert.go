package discord

import (
	"bytes"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/sokuji-bot/render"
)

func buttonStyle(s render.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case render.StyleSecondary:
		return discordgo.SecondaryButton
	case render.StyleSuccess:
		return discordgo.SuccessButton
	case render.StyleDanger:
		return discordgo.DangerButton
	}
	return discordgo.PrimaryButton
}

func toComponents(rows []render.Row) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		var comps []discordgo.MessageComponent
		for _, c := range row {
			switch c.Kind {
			case render.KindSelect:
				opts := make([]discordgo.SelectMenuOption, len(c.Options))
				for i, o := range c.Options {
					opts[i] = discordgo.SelectMenuOption{Label: o.Label, Value: o.Value, Default: o.Default}
				}
				comps = append(comps, discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    c.ID,
					Placeholder: c.Placeholder,
					Options:     opts,
				})
			default:
				comps = append(comps, discordgo.Button{
					CustomID: c.ID,
					Label:    c.Label,
					Style:    buttonStyle(c.Style),
				})
			}
		}
		if len(comps) > 0 {
			out = append(out, discordgo.ActionsRow{Components: comps})
		}
	}
	return out
}

func toEmbeds(embeds []render.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Image != "" {
			me.Image = &discordgo.MessageEmbedImage{URL: e.Image}
		}
		out = append(out, me)
	}
	return out
}

func toFiles(files []render.File) []*discordgo.File {
	out := make([]*discordgo.File, 0, len(files))
	for _, f := range files {
		out = append(out, &discordgo.File{Name: f.Name, ContentType: "image/png", Reader: bytes.NewReader(f.Data)})
	}
	return out
}

func flags(msg render.Message) discordgo.MessageFlags {
	if msg.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func toMessageSend(msg render.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
		Files:      toFiles(msg.Files),
	}
	if msg.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{MessageID: msg.ReplyTo}
	}
	return send
}

// toMessageEdit replaces everything the message shows, attachments
// included.
func toMessageEdit(channelID, messageID string, msg render.Message) *discordgo.MessageEdit {
	content := msg.Content
	embeds := toEmbeds(msg.Embeds)
	components := toComponents(msg.Components)
	attachments := []*discordgo.MessageAttachment{}
	return &discordgo.MessageEdit{
		ID:          messageID,
		Channel:     channelID,
		Content:     &content,
		Embeds:      &embeds,
		Components:  &components,
		Files:       toFiles(msg.Files),
		Attachments: &attachments,
	}
}

func toWebhookEdit(msg render.Message) *discordgo.WebhookEdit {
	content := msg.Content
	embeds := toEmbeds(msg.Embeds)
	components := toComponents(msg.Components)
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
		Files:      toFiles(msg.Files),
	}
}

func toWebhookParams(msg render.Message) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
		Files:      toFiles(msg.Files),
		Flags:      flags(msg),
	}
}

func toResponseData(msg render.Message) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
		Files:      toFiles(msg.Files),
		Flags:      flags(msg),
	}
}
