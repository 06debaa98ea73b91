// Package render turns sessions into platform-neutral messages. The Discord
// adapter maps Message onto embeds and components; text-only transports use
// PlainText.
package render

// Component ids carried by buttons and selects. The bot dispatches on them.
const (
	IDAdd          = "sokuji_add"
	IDEditRace     = "sokuji_edit_race"
	IDEditTrack    = "sokuji_edit_track"
	IDUndo         = "sokuji_undo"
	IDResumePrefix = "sokuji_resume_"

	// IDEditRanksPrefix is followed by the race number, or "latest".
	IDEditRanksPrefix = "sokuji_edit_ranks_"

	IDLangEN    = "sokuji_config_lang_en"
	IDLangJA    = "sokuji_config_lang_ja"
	IDTextShow  = "sokuji_config_text_show"
	IDTextHide  = "sokuji_config_text_hide"
	IDImageShow = "sokuji_config_image_show"
	IDImageHide = "sokuji_config_image_hide"
	IDMode      = "sokuji_config_mode"
	IDWidget    = "sokuji_config_widget"
	IDTags      = "sokuji_config_tags"
	IDRaceNum   = "sokuji_config_raceNum"
)

// ImageName is the attachment name of the score image.
const ImageName = "sokuji.png"

type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

type ComponentKind int

const (
	KindButton ComponentKind = iota
	KindSelect
)

// Component is a button or a string select.
type Component struct {
	Kind        ComponentKind
	ID          string
	Label       string
	Style       ButtonStyle
	Placeholder string
	Options     []SelectOption
}

type SelectOption struct {
	Label   string
	Value   string
	Default bool
}

// Row is one action row.
type Row []Component

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	// Image references an attachment, e.g. "attachment://sokuji.png".
	Image string
}

type File struct {
	Name string
	Data []byte
}

// Message is everything needed to send or edit one chat message.
type Message struct {
	Content    string
	Embeds     []Embed
	Files      []File
	Components []Row

	// ReplyTo quotes an earlier message of the channel.
	ReplyTo string
	// Ephemeral replies are shown only to the invoking user where the
	// transport supports it.
	Ephemeral bool
}

// WithoutComponents returns m with its buttons stripped, as shown on boards
// that are no longer current.
func (m Message) WithoutComponents() Message {
	m.Components = nil
	return m
}

func button(id, label string, style ButtonStyle) Component {
	return Component{Kind: KindButton, ID: id, Label: label, Style: style}
}
