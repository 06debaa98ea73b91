package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/telemetry"
	"github.com/onnwee/sokuji-bot/tracks"
)

// Modal and confirmation ids. Modals carry the message their form was
// opened from, since the submit may not.
const (
	modalAddPrefix     = "sokuji_modal_add_"
	modalEditPrefix    = "sokuji_modal_edit_"
	modalRanksPrefix   = "sokuji_modal_ranks_"
	modalTagsPrefix    = "sokuji_modal_tags_"
	modalRaceNumPrefix = "sokuji_modal_racenum_"

	undoYesPrefix = "sokuji_undo_yes_"
	undoNoPrefix  = "sokuji_undo_no_"

	// editKindRaceRanksLater marks a race edit whose ranks follow in a
	// second form.
	editKindRaceRanksLater = "race2"

	maxRankFields = 5
)

func (b *Bot) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := b.eventContext()
	defer cancel()
	b.HandleInteraction(ctx, ic.Interaction)
}

func interactionUser(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// HandleInteraction answers one slash command, component or modal submit.
func (b *Bot) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	ctx = telemetry.EnsureCorrelation(ctx)
	r := newInteractionReplier(b.session, i)
	req := bot.Request{
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
		UserID:    interactionUser(i),
		IsJa:      i18n.IsJapaneseLocale(string(i.Locale)),
		Reply:     r,
	}
	if i.Message != nil {
		req.MessageID = i.Message.ID
	}

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = b.handleCommand(ctx, i.ApplicationCommandData(), req, r)
	case discordgo.InteractionMessageComponent:
		err = b.handleComponent(ctx, i, req, r)
	case discordgo.InteractionModalSubmit:
		err = b.handleModal(ctx, i.ModalSubmitData(), req, r)
	default:
		return
	}
	if err != nil {
		answerError(ctx, r, err, req.IsJa, "")
	}
	r.finish()
}

func (b *Bot) handleCommand(ctx context.Context, data discordgo.ApplicationCommandInteractionData, req bot.Request, r *interactionReplier) error {
	if data.Name != CommandName || len(data.Options) == 0 {
		return nil
	}
	sub := data.Options[0]
	opts := commandOptions(sub.Options)
	if err := r.deferReply(false); err != nil {
		return err
	}
	switch sub.Name {
	case "start":
		return b.core.Start(ctx, req, bot.StartInput{
			Format: intOption(opts, "format", 0),
			Tags:   strings.Fields(stringOption(opts, "tags")),
		})
	case "end":
		return b.core.End(ctx, req)
	case "now":
		return b.core.Now(ctx, req)
	case "repick":
		return b.core.AddOther(ctx, req, bot.ReasonRepick, intOption(opts, "score", bot.DefaultRepickScore), stringOption(opts, "tag"))
	case "penalty":
		return b.core.AddOther(ctx, req, bot.ReasonPenalty, intOption(opts, "score", 0), stringOption(opts, "tag"))
	case "bonus":
		return b.core.AddOther(ctx, req, bot.ReasonBonus, intOption(opts, "score", 0), stringOption(opts, "tag"))
	}
	return nil
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.Interaction, req bot.Request, r *interactionReplier) error {
	data := i.MessageComponentData()
	id := data.CustomID
	switch id {
	case render.IDAdd:
		return b.showAddForm(ctx, req, r)
	case render.IDEditRace:
		return b.showEditForm(ctx, req, r, bot.EditKindRace)
	case render.IDEditTrack:
		return b.showEditForm(ctx, req, r, bot.EditKindTrack)
	case render.IDUndo:
		return b.askUndo(ctx, i, req, r)
	case render.IDLangEN, render.IDLangJA:
		return b.configure(r, func() error { return b.core.SetLanguage(ctx, req, id == render.IDLangJA) })
	case render.IDTextShow, render.IDTextHide:
		return b.configure(r, func() error { return b.core.SetShowText(ctx, req, id == render.IDTextShow) })
	case render.IDImageShow, render.IDImageHide:
		return b.configure(r, func() error { return b.core.SetShowImage(ctx, req, id == render.IDImageShow) })
	case render.IDMode:
		if len(data.Values) == 0 {
			return r.deferUpdate()
		}
		return b.configure(r, func() error { return b.core.SetMode(ctx, req, data.Values[0]) })
	case render.IDWidget:
		return b.core.RegisterWidget(ctx, req, nil, true)
	case render.IDTags:
		return b.showTagsForm(ctx, req, r)
	case render.IDRaceNum:
		return b.showRaceNumForm(ctx, req, r)
	}
	switch {
	case strings.HasPrefix(id, render.IDEditRanksPrefix):
		return b.showRanksForm(ctx, req, r, strings.TrimPrefix(id, render.IDEditRanksPrefix))
	case strings.HasPrefix(id, render.IDResumePrefix):
		if err := r.stripComponents(); err != nil {
			return err
		}
		return b.core.Resume(ctx, req, strings.TrimPrefix(id, render.IDResumePrefix))
	case strings.HasPrefix(id, undoYesPrefix):
		return b.confirmUndo(ctx, req, r, strings.TrimPrefix(id, undoYesPrefix), true)
	case strings.HasPrefix(id, undoNoPrefix):
		return b.confirmUndo(ctx, req, r, strings.TrimPrefix(id, undoNoPrefix), false)
	}
	return nil
}

// configure acknowledges a config panel control before running it; the
// panel itself is edited by the handler.
func (b *Bot) configure(r *interactionReplier, fn func() error) error {
	if err := r.deferUpdate(); err != nil {
		return err
	}
	return fn()
}

func textInput(id, label, placeholder, value string, required bool) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{
		CustomID:    id,
		Label:       label,
		Style:       discordgo.TextInputShort,
		Placeholder: placeholder,
		Value:       value,
		Required:    required,
	}}}
}

// formRows lays out a ranks form: race number, one field per tag, track.
func formRows(form bot.RanksForm, isJa bool) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	if form.WithRaceNumber {
		rows = append(rows, textInput("n", i18n.Sprintf(isJa, "field_race_number"), i18n.Sprintf(isJa, "field_race_number_hint"), "", false))
	}
	for i, tag := range form.Tags {
		rows = append(rows, textInput("ranks_"+strconv.Itoa(i), tag, form.Placeholder(i), "", form.Required))
	}
	if form.WithTrack {
		rows = append(rows, textInput("track", i18n.Sprintf(isJa, "label_track"), tracks.All[0].Abbr, form.Track, false))
	}
	return rows
}

func (b *Bot) showAddForm(ctx context.Context, req bot.Request, r *interactionReplier) error {
	form, err := b.core.AddForm(ctx, req)
	if err != nil {
		return err
	}
	title := "modal_add_ranks_track"
	if !form.WithTrack {
		title = "modal_add_ranks"
	}
	return r.showModal(modalAddPrefix+req.MessageID, i18n.Sprintf(req.IsJa, title), formRows(form, req.IsJa))
}

func (b *Bot) showEditForm(ctx context.Context, req bot.Request, r *interactionReplier, kind bot.EditKind) error {
	form, err := b.core.EditForm(ctx, req, kind)
	if err != nil {
		return err
	}
	k := string(kind)
	if kind == bot.EditKindRace && len(form.Tags) == 0 {
		k = editKindRaceRanksLater
	}
	return r.showModal(modalEditPrefix+k+"_"+req.MessageID, i18n.Sprintf(req.IsJa, "modal_edit"), formRows(form, req.IsJa))
}

// showRanksForm opens the ranks form of the two-player edit prompt; n is a
// race number or "latest".
func (b *Bot) showRanksForm(ctx context.Context, req bot.Request, r *interactionReplier, n string) error {
	form, err := b.core.EditForm(ctx, req, bot.EditKindRanks)
	if err != nil {
		return err
	}
	return r.showModal(modalRanksPrefix+n, i18n.Sprintf(req.IsJa, "modal_edit"), formRows(form, req.IsJa))
}

func (b *Bot) showTagsForm(ctx context.Context, req bot.Request, r *interactionReplier) error {
	tags, _, ok, err := b.core.PanelForm(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		return r.deferUpdate()
	}
	row := discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{
		CustomID: "tags",
		Label:    i18n.Sprintf(req.IsJa, "field_tags"),
		Style:    discordgo.TextInputParagraph,
		Value:    strings.Join(tags, "\n"),
		Required: true,
	}}}
	id := modalTagsPrefix + strconv.Itoa(len(tags)) + "_" + req.MessageID
	return r.showModal(id, i18n.Sprintf(req.IsJa, "modal_edit_tags"), []discordgo.MessageComponent{row})
}

func (b *Bot) showRaceNumForm(ctx context.Context, req bot.Request, r *interactionReplier) error {
	_, raceNum, ok, err := b.core.PanelForm(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		return r.deferUpdate()
	}
	rows := []discordgo.MessageComponent{
		textInput("race_num", i18n.Sprintf(req.IsJa, "field_race_num"), "12", strconv.Itoa(raceNum), true),
	}
	return r.showModal(modalRaceNumPrefix+req.MessageID, i18n.Sprintf(req.IsJa, "modal_edit_race_num"), rows)
}

// askUndo shows an ephemeral confirmation for the board's Undo button. It
// is deleted when nobody answers in time.
func (b *Bot) askUndo(ctx context.Context, i *discordgo.Interaction, req bot.Request, r *interactionReplier) error {
	token := i.ID
	b.confirms.add(token, req.MessageID, b.opts.UndoTimeout, func() {
		_ = b.session.InteractionResponseDelete(i)
	})
	_, err := r.Reply(ctx, render.Message{
		Content:   i18n.Sprintf(req.IsJa, "undo_confirm"),
		Ephemeral: true,
		Components: []render.Row{{
			{Kind: render.KindButton, ID: undoYesPrefix + token, Label: i18n.Sprintf(req.IsJa, "label_confirm_undo"), Style: render.StyleDanger},
			{Kind: render.KindButton, ID: undoNoPrefix + token, Label: i18n.Sprintf(req.IsJa, "label_cancel"), Style: render.StyleSecondary},
		}},
	})
	if err != nil {
		b.confirms.take(token)
	}
	return err
}

func (b *Bot) confirmUndo(ctx context.Context, req bot.Request, r *interactionReplier, token string, yes bool) error {
	boardID, ok := b.confirms.take(token)
	if err := r.stripComponents(); err != nil {
		return err
	}
	if !ok || !yes {
		return nil
	}
	req.MessageID = boardID
	return b.core.UndoBoard(ctx, req)
}

// modalValues maps text input ids to their values.
func modalValues(rows []discordgo.MessageComponent) map[string]string {
	values := map[string]string{}
	var visit func(c discordgo.MessageComponent)
	visit = func(c discordgo.MessageComponent) {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			for _, cc := range v.Components {
				visit(cc)
			}
		case discordgo.ActionsRow:
			for _, cc := range v.Components {
				visit(cc)
			}
		case *discordgo.TextInput:
			values[v.CustomID] = v.Value
		case discordgo.TextInput:
			values[v.CustomID] = v.Value
		}
	}
	for _, c := range rows {
		visit(c)
	}
	return values
}

// rankValues reads ranks_0.. in order; blank fields become nil.
func rankValues(values map[string]string) []*string {
	var ranks []*string
	for i := range maxRankFields {
		v, ok := values["ranks_"+strconv.Itoa(i)]
		if !ok {
			break
		}
		if strings.TrimSpace(v) == "" {
			ranks = append(ranks, nil)
			continue
		}
		ranks = append(ranks, &v)
	}
	return ranks
}

func (b *Bot) handleModal(ctx context.Context, data discordgo.ModalSubmitInteractionData, req bot.Request, r *interactionReplier) error {
	values := modalValues(data.Components)
	id := data.CustomID
	switch {
	case strings.HasPrefix(id, modalAddPrefix):
		req.MessageID = strings.TrimPrefix(id, modalAddPrefix)
		if err := r.deferReply(false); err != nil {
			return err
		}
		return b.core.SubmitRanks(ctx, req, rankValues(values), strings.TrimSpace(values["track"]))

	case strings.HasPrefix(id, modalEditPrefix):
		kind, boardID, _ := strings.Cut(strings.TrimPrefix(id, modalEditPrefix), "_")
		req.MessageID = boardID
		n := bot.ParseRaceNumber(values["n"])
		track := strings.TrimSpace(values["track"])
		if kind == editKindRaceRanksLater {
			if track == "" {
				return b.core.EditPrompt(ctx, req, n)
			}
			if err := r.deferReply(false); err != nil {
				return err
			}
			if err := b.core.EditRace(ctx, req, bot.EditInput{N: n, Track: track}); err != nil {
				return err
			}
			return b.core.EditPrompt(ctx, req, n)
		}
		if err := r.deferReply(false); err != nil {
			return err
		}
		return b.core.EditRace(ctx, req, bot.EditInput{
			N:         n,
			Ranks:     rankValues(values),
			Track:     track,
			EditTrack: kind == string(bot.EditKindTrack),
		})

	case strings.HasPrefix(id, modalRanksPrefix):
		if err := r.deferReply(false); err != nil {
			return err
		}
		n := bot.ParseRaceNumber(strings.TrimPrefix(id, modalRanksPrefix))
		return b.core.EditRace(ctx, req, bot.EditInput{N: n, Ranks: rankValues(values)})

	case strings.HasPrefix(id, modalTagsPrefix):
		wantText, panelID, _ := strings.Cut(strings.TrimPrefix(id, modalTagsPrefix), "_")
		want, _ := strconv.Atoi(wantText)
		req.MessageID = panelID
		if err := r.deferReply(false); err != nil {
			return err
		}
		return b.core.SetTags(ctx, req, values["tags"], want)

	case strings.HasPrefix(id, modalRaceNumPrefix):
		req.MessageID = strings.TrimPrefix(id, modalRaceNumPrefix)
		if err := r.deferReply(false); err != nil {
			return err
		}
		return b.core.SetRaceNum(ctx, req, values["race_num"])
	}
	return nil
}
