package sokuji

import (
	"slices"
	"strings"
)

// DefaultRaceNum is the planned race count of a new session.
const DefaultRaceNum = 12

const maxTagLength = 10

// GuildProfile is what a session borrows from its guild: the team tag, the
// brand color and the language.
type GuildProfile struct {
	Tag   string
	Color int
	IsJa  bool
}

// StartOptions describes a new session.
type StartOptions struct {
	ID        string
	ChannelID string
	GuildID   string
	// Format is the team size; 0 infers it from the number of tags.
	Format int
	Tags   []string
	Guild  *GuildProfile
	// Config is the channel's stored preferences, if any.
	Config *Config
}

// ValidFormat reports whether format is a supported team size.
func ValidFormat(format int) bool {
	switch format {
	case 2, 3, 4, 6:
		return true
	}
	return false
}

// InferFormat picks the team size from the number of tags given.
func InferFormat(tagCount int) int {
	switch tagCount {
	case 3:
		return 4
	case 4:
		return 3
	case 5, 6:
		return 2
	}
	return 6
}

// TruncateTag cuts a tag to the maximum tag length in runes.
func TruncateTag(tag string) string {
	r := []rune(tag)
	if len(r) > maxTagLength {
		return string(r[:maxTagLength])
	}
	return tag
}

// Start builds a new, empty session.
func Start(opts StartOptions) (*Session, error) {
	var tags []string
	for _, t := range opts.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	format := opts.Format
	if format == 0 {
		format = InferFormat(len(tags))
	}
	if !ValidFormat(format) {
		return nil, NewError(CodeInvalidFormat)
	}
	teamNum := 12 / format

	if len(tags) > teamNum {
		tags = tags[:teamNum]
	}
	for i := range tags {
		tags[i] = TruncateTag(tags[i])
	}
	if len(tags) < teamNum {
		if opts.Guild != nil && opts.Guild.Tag != "" {
			tags = append([]string{opts.Guild.Tag}, tags...)
		}
		for c := 'A'; len(tags) < teamNum; c++ {
			tag := strings.Repeat(string(c), 2)
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}

	var firstHue *float64
	if opts.Guild != nil && opts.Guild.Tag != "" && tags[0] == opts.Guild.Tag {
		h := rgbToHue(opts.Guild.Color)
		firstHue = &h
	}

	cfg := Config{Mode: ModeClassic}
	switch {
	case opts.Config != nil:
		cfg = *opts.Config
		if cfg.Mode == "" {
			cfg.Mode = ModeClassic
		}
	case opts.Guild != nil:
		cfg.IsJa = opts.Guild.IsJa
	}

	return &Session{
		ID:        opts.ID,
		GuildID:   opts.GuildID,
		ChannelID: opts.ChannelID,
		Format:    format,
		Tags:      tags,
		Colors:    teamColors(teamNum, firstHue),
		Scores:    make([]int, teamNum),
		RaceNum:   DefaultRaceNum,
		Others:    make(map[int][]Other),
		Config:    cfg,
	}, nil
}
