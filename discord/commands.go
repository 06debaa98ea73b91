package discord

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/sokuji-bot/i18n"
)

// CommandName is the root slash command.
const CommandName = "sokuji"

func localized(key string) (string, *map[discordgo.Locale]string) {
	ja := map[discordgo.Locale]string{discordgo.Japanese: i18n.Sprintf(true, key)}
	return i18n.Sprintf(false, key), &ja
}

func option(typ discordgo.ApplicationCommandOptionType, name, key string, required bool) *discordgo.ApplicationCommandOption {
	desc, ja := localized(key)
	return &discordgo.ApplicationCommandOption{
		Type:                     typ,
		Name:                     name,
		Description:              desc,
		DescriptionLocalizations: *ja,
		Required:                 required,
	}
}

func subcommand(name, key string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	o := option(discordgo.ApplicationCommandOptionSubCommand, name, key, false)
	o.Options = opts
	return o
}

func scoreOption(required bool, minValue *float64, maxValue float64) *discordgo.ApplicationCommandOption {
	o := option(discordgo.ApplicationCommandOptionInteger, "score", "opt_score", required)
	o.MinValue = minValue
	o.MaxValue = maxValue
	return o
}

// Commands returns the /sokuji command tree.
func Commands() []*discordgo.ApplicationCommand {
	format := option(discordgo.ApplicationCommandOptionInteger, "format", "opt_format", false)
	for _, f := range []int{6, 4, 3, 2} {
		format.Choices = append(format.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  formatLabel(f),
			Value: f,
		})
	}
	zero := 0.0
	lowest := -999.0
	desc, ja := localized("cmd_sokuji")
	return []*discordgo.ApplicationCommand{{
		Name:                     CommandName,
		Type:                     discordgo.ChatApplicationCommand,
		Description:              desc,
		DescriptionLocalizations: ja,
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("start", "cmd_start",
				option(discordgo.ApplicationCommandOptionString, "tags", "opt_tags", true),
				format),
			subcommand("end", "cmd_end"),
			subcommand("now", "cmd_now"),
			subcommand("repick", "cmd_repick",
				option(discordgo.ApplicationCommandOptionString, "tag", "opt_tag", false),
				scoreOption(false, &lowest, 0)),
			subcommand("penalty", "cmd_penalty",
				scoreOption(true, &lowest, 0),
				option(discordgo.ApplicationCommandOptionString, "tag", "opt_tag", false)),
			subcommand("bonus", "cmd_bonus",
				scoreOption(true, &zero, 999),
				option(discordgo.ApplicationCommandOptionString, "tag", "opt_tag", false)),
		},
	}}
}

// commandsHash fingerprints a command set.
func commandsHash(cmds []*discordgo.ApplicationCommand) (string, error) {
	data, err := json.Marshal(cmds)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RegisterCommands overwrites the application's commands unless the same set
// was registered before.
func (b *Bot) RegisterCommands(ctx context.Context, appID string) error {
	cmds := Commands()
	hash, err := commandsHash(cmds)
	if err != nil {
		return err
	}
	key := "discord_commands:" + appID + ":" + b.opts.GuildID
	if b.opts.KV != nil {
		prev, ok, err := b.opts.KV.GetKV(ctx, key)
		if err != nil {
			slog.Warn("read command hash", slog.String("component", "discord"), slog.Any("err", err))
		} else if ok && prev == hash {
			slog.Debug("commands unchanged", slog.String("component", "discord"))
			return nil
		}
	}
	created, err := b.session.ApplicationCommandBulkOverwrite(appID, b.opts.GuildID, cmds)
	if err != nil {
		return fmt.Errorf("overwrite commands: %w", err)
	}
	slog.Info("registered commands", slog.String("component", "discord"), slog.Int("count", len(created)), slog.String("guild_id", b.opts.GuildID))
	if b.opts.KV != nil {
		if err := b.opts.KV.SetKV(ctx, key, hash); err != nil {
			return fmt.Errorf("store command hash: %w", err)
		}
	}
	return nil
}

// commandOptions flattens a subcommand's options by name.
func commandOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func stringOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := m[name]; ok {
		return o.StringValue()
	}
	return ""
}

func intOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, def int) int {
	if o, ok := m[name]; ok {
		return int(o.IntValue())
	}
	return def
}

func formatLabel(f int) string { return strconv.Itoa(f) + "v" + strconv.Itoa(f) }
