package discord

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/keylock"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/testutil"
	"github.com/onnwee/sokuji-bot/tracks"
)

// fakeSession records REST calls and hands out message ids m1, m2, ...
type fakeSession struct {
	mu sync.Mutex
	n  int

	responses       []*discordgo.InteractionResponse
	responseEdits   []*discordgo.WebhookEdit
	followups       []*discordgo.WebhookParams
	sent            []*discordgo.MessageSend
	edited          []*discordgo.MessageEdit
	deleted         []string
	responseDeletes int
	overwrites      [][]*discordgo.ApplicationCommand
}

func (f *fakeSession) nextMessage(channelID string) *discordgo.Message {
	f.n++
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.n), ChannelID: channelID}
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return f.nextMessage(channelID), nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponse(i *discordgo.Interaction, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextMessage(i.ChannelID), nil
}

func (f *fakeSession) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responseEdits = append(f.responseEdits, edit)
	return f.nextMessage(i.ChannelID), nil
}

func (f *fakeSession) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responseDeletes++
	return nil
}

func (f *fakeSession) FollowupMessageCreate(i *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return f.nextMessage(i.ChannelID), nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_, _ string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwrites = append(f.overwrites, cmds)
	return cmds, nil
}

func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

func (f *fakeSession) deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.responseDeletes
}

// MockKV stands in for the kv table.
type MockKV struct {
	mock.Mock
}

func (m *MockKV) GetKV(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKV) SetKV(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

type fixture struct {
	dg    *Bot
	fake  *fakeSession
	store *testutil.MemoryStore
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	fake := &fakeSession{}
	store := testutil.NewMemoryStore()
	core := &bot.Bot{
		Sessions:  store,
		Guilds:    store,
		Tracks:    &tracks.Service{Store: store},
		Locks:     keylock.New(nil),
		Messenger: Messenger{Session: fake},
	}
	return &fixture{dg: New(fake, core, opts), fake: fake, store: store}
}

func (f *fixture) current(t *testing.T) *sokuji.Session {
	t.Helper()
	s, err := sokuji.LoadCurrent(context.Background(), f.store, "c1")
	require.NoError(t, err)
	return s
}

func interaction(id string, typ discordgo.InteractionType, data discordgo.InteractionData, messageID string) *discordgo.Interaction {
	i := &discordgo.Interaction{
		ID:        id,
		Type:      typ,
		Data:      data,
		ChannelID: "c1",
		GuildID:   "g1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
		Locale:    discordgo.EnglishUS,
	}
	if messageID != "" {
		i.Message = &discordgo.Message{ID: messageID, ChannelID: "c1"}
	}
	return i
}

func (f *fixture) slash(t *testing.T, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) {
	t.Helper()
	data := discordgo.ApplicationCommandInteractionData{
		Name: CommandName,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:    sub,
			Type:    discordgo.ApplicationCommandOptionSubCommand,
			Options: opts,
		}},
	}
	f.dg.HandleInteraction(context.Background(), interaction("i-"+sub, discordgo.InteractionApplicationCommand, data, ""))
}

func (f *fixture) click(id, customID, messageID string, values ...string) {
	data := discordgo.MessageComponentInteractionData{CustomID: customID, ComponentType: discordgo.ButtonComponent, Values: values}
	f.dg.HandleInteraction(context.Background(), interaction(id, discordgo.InteractionMessageComponent, data, messageID))
}

func (f *fixture) submit(customID string, fields map[string]string) {
	var rows []discordgo.MessageComponent
	for id, v := range fields {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: v},
		}})
	}
	data := discordgo.ModalSubmitInteractionData{CustomID: customID, Components: rows}
	f.dg.HandleInteraction(context.Background(), interaction("i-modal", discordgo.InteractionModalSubmit, data, ""))
}

func (f *fixture) start(t *testing.T) *sokuji.Session {
	t.Helper()
	f.slash(t, "start", &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "tags",
		Type:  discordgo.ApplicationCommandOptionString,
		Value: "A B",
	})
	return f.current(t)
}

func TestRegisterCommands(t *testing.T) {
	hash, err := commandsHash(Commands())
	require.NoError(t, err)
	key := "discord_commands:app:g1"

	t.Run("unchanged", func(t *testing.T) {
		kv := &MockKV{}
		kv.On("GetKV", mock.Anything, key).Return(hash, true, nil)
		f := newFixture(t, Options{GuildID: "g1", KV: kv})

		require.NoError(t, f.dg.RegisterCommands(context.Background(), "app"))
		assert.Empty(t, f.fake.overwrites)
		kv.AssertNotCalled(t, "SetKV", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("changed", func(t *testing.T) {
		kv := &MockKV{}
		kv.On("GetKV", mock.Anything, key).Return("old", true, nil)
		kv.On("SetKV", mock.Anything, key, hash).Return(nil)
		f := newFixture(t, Options{GuildID: "g1", KV: kv})

		require.NoError(t, f.dg.RegisterCommands(context.Background(), "app"))
		require.Len(t, f.fake.overwrites, 1)
		assert.Equal(t, CommandName, f.fake.overwrites[0][0].Name)
		kv.AssertExpectations(t)
	})

	t.Run("without kv", func(t *testing.T) {
		f := newFixture(t, Options{})
		require.NoError(t, f.dg.RegisterCommands(context.Background(), "app"))
		assert.Len(t, f.fake.overwrites, 1)
	})
}

func TestCommandsTree(t *testing.T) {
	cmds := Commands()
	require.Len(t, cmds, 1)
	var names []string
	for _, o := range cmds[0].Options {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"start", "end", "now", "repick", "penalty", "bonus"}, names)
	assert.Equal(t, "6v6", cmds[0].Options[0].Options[1].Choices[0].Name)
	assert.NotEmpty(t, cmds[0].DescriptionLocalizations)
}

func TestSlashStart(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.start(t)

	require.Len(t, f.fake.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, f.fake.responses[0].Type)

	// The panel replaces the loading reply; the board follows up.
	require.Len(t, f.fake.responseEdits, 1)
	require.Len(t, f.fake.followups, 1)
	assert.Equal(t, "m1", s.ConfigMessageID)
	assert.Equal(t, "m2", s.PrevMessageID)
	assert.Equal(t, []string{"A", "B"}, s.Tags)
	assert.Equal(t, "A - B", f.fake.followups[0].Embeds[0].Title)
	assert.Zero(t, f.fake.deletes())
}

func TestSlashErrorWithoutSession(t *testing.T) {
	f := newFixture(t, Options{})
	f.slash(t, "end")

	require.Len(t, f.fake.responseEdits, 1)
	assert.NotEmpty(t, *f.fake.responseEdits[0].Content)
}

func TestAddButtonOpensModal(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.start(t)

	f.click("i-add", render.IDAdd, s.PrevMessageID)
	resp := f.fake.lastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, modalAddPrefix+s.PrevMessageID, resp.Data.CustomID)

	// One rank field for the own team and the track.
	require.Len(t, resp.Data.Components, 2)
	values := map[string]string{}
	for _, row := range resp.Data.Components {
		in := row.(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
		values[in.CustomID] = in.Placeholder
	}
	assert.Equal(t, "123456", values["ranks_0"])
	assert.Contains(t, values, "track")
}

func TestModalSubmitScores(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.start(t)

	f.submit(modalAddPrefix+s.PrevMessageID, map[string]string{"ranks_0": "123456", "track": ""})
	s = f.current(t)
	require.Len(t, s.Races, 1)
	assert.Equal(t, []int{61, 21}, s.Scores)
	assert.Equal(t, "m3", s.PrevMessageID)
	assert.Contains(t, f.fake.deleted, "m2")
}

func TestStaleBoardButton(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)

	f.click("i-add", render.IDAdd, "old-board")
	resp := f.fake.lastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestUndoConfirmation(t *testing.T) {
	f := newFixture(t, Options{UndoTimeout: time.Minute})
	s := f.start(t)
	f.submit(modalAddPrefix+s.PrevMessageID, map[string]string{"ranks_0": "123456"})
	s = f.current(t)
	require.Len(t, s.Races, 1)

	f.click("tok", render.IDUndo, s.PrevMessageID)
	prompt := f.fake.lastResponse()
	require.NotNil(t, prompt)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, prompt.Data.Flags)
	buttons := prompt.Data.Components[0].(discordgo.ActionsRow).Components
	assert.Equal(t, undoYesPrefix+"tok", buttons[0].(discordgo.Button).CustomID)
	assert.Equal(t, 1, f.dg.confirms.len())

	f.click("i-no", undoNoPrefix+"tok", "prompt")
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, f.fake.lastResponse().Type)
	assert.Len(t, f.current(t).Races, 1)

	// An answered prompt cannot undo anymore.
	f.click("i-yes", undoYesPrefix+"tok", "prompt")
	assert.Len(t, f.current(t).Races, 1)

	f.click("tok2", render.IDUndo, s.PrevMessageID)
	f.click("i-yes2", undoYesPrefix+"tok2", "prompt")
	assert.Empty(t, f.current(t).Races)
	assert.Equal(t, []int{0, 0}, f.current(t).Scores)
	assert.Zero(t, f.dg.confirms.len())
}

func TestUndoConfirmationExpires(t *testing.T) {
	f := newFixture(t, Options{UndoTimeout: 10 * time.Millisecond})
	s := f.start(t)

	f.click("tok", render.IDUndo, s.PrevMessageID)
	require.Eventually(t, func() bool { return f.fake.deletes() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.dg.confirms.len())
}

func TestConfigButtons(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.start(t)

	f.click("i-ja", render.IDLangJA, s.ConfigMessageID)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, f.fake.lastResponse().Type)
	assert.True(t, f.current(t).IsJa)

	f.click("i-tags", render.IDTags, s.ConfigMessageID)
	resp := f.fake.lastResponse()
	assert.Equal(t, modalTagsPrefix+"2_"+s.ConfigMessageID, resp.Data.CustomID)
	in := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, "A\nB", in.Value)

	f.submit(modalTagsPrefix+"2_"+s.ConfigMessageID, map[string]string{"tags": "X\nY"})
	assert.Equal(t, []string{"X", "Y"}, f.current(t).Tags)
}

func TestHandleMessage(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)

	msg := func(id, content string) *discordgo.Message {
		return &discordgo.Message{ID: id, ChannelID: "c1", GuildID: "g1", Author: &discordgo.User{ID: "u1"}, Content: content}
	}
	f.dg.HandleMessage(context.Background(), msg("t1", "123456"))
	s := f.current(t)
	require.Len(t, s.Races, 1)
	assert.Equal(t, []int{61, 21}, s.Scores)

	f.dg.HandleMessage(context.Background(), msg("t2", "gg"))
	assert.Len(t, f.current(t).Races, 1)
}

func TestHandleMessageError(t *testing.T) {
	f := newFixture(t, Options{})
	f.dg.HandleMessage(context.Background(), &discordgo.Message{
		ID: "t1", ChannelID: "c1", GuildID: "g1", Author: &discordgo.User{ID: "u1"}, Content: "%end",
	})
	require.Len(t, f.fake.sent, 1)
	require.NotNil(t, f.fake.sent[0].Reference)
	assert.Equal(t, "t1", f.fake.sent[0].Reference.MessageID)
	assert.NotEmpty(t, f.fake.sent[0].Content)
}

func TestMessageTime(t *testing.T) {
	got := MessageTime("175928847299117063")
	assert.Equal(t, int64(1462015105796), got.UnixMilli())
	assert.True(t, MessageTime("").IsZero())
	assert.True(t, MessageTime("not-a-snowflake").IsZero())
}

func TestModalValues(t *testing.T) {
	rows := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{&discordgo.TextInput{CustomID: "ranks_0", Value: "12"}}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{CustomID: "ranks_1", Value: " "}}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{discordgo.TextInput{CustomID: "track", Value: "bcm"}}},
	}
	values := modalValues(rows)
	assert.Equal(t, "bcm", values["track"])

	ranks := rankValues(values)
	require.Len(t, ranks, 2)
	assert.Equal(t, "12", *ranks[0])
	assert.Nil(t, ranks[1])
}

func TestConvert(t *testing.T) {
	msg := render.Message{
		Content: "hi",
		Embeds:  []render.Embed{{Title: "A - B", Color: 0x123456, Image: "attachment://" + render.ImageName, Fields: []render.Field{{Name: "n", Value: "v"}}}},
		Files:   []render.File{{Name: render.ImageName, Data: []byte("png")}},
		Components: []render.Row{
			{{Kind: render.KindButton, ID: "b", Label: "B", Style: render.StyleDanger}},
			{{Kind: render.KindSelect, ID: "s", Options: []render.SelectOption{{Label: "x", Value: "x", Default: true}}}},
			{},
		},
		ReplyTo:   "r1",
		Ephemeral: true,
	}

	send := toMessageSend(msg)
	assert.Equal(t, "r1", send.Reference.MessageID)
	require.Len(t, send.Components, 2)
	assert.Equal(t, discordgo.DangerButton, send.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button).Style)
	sel := send.Components[1].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, discordgo.StringSelectMenu, sel.MenuType)
	assert.True(t, sel.Options[0].Default)
	assert.Equal(t, "attachment://sokuji.png", send.Embeds[0].Image.URL)
	data, err := io.ReadAll(send.Files[0].Reader)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	edit := toMessageEdit("c1", "m1", render.Message{Content: "x"})
	assert.Equal(t, "x", *edit.Content)
	assert.Empty(t, *edit.Components)
	assert.Empty(t, *edit.Attachments)

	assert.Equal(t, discordgo.MessageFlagsEphemeral, toResponseData(msg).Flags)
	assert.Zero(t, toWebhookParams(render.Message{}).Flags)
}
