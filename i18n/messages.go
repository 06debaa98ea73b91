package i18n

type entry struct {
	en string
	ja string
}

var messages = map[string]entry{
	// errors
	"session_not_found":       {"Sokuji is not found in this channel. Start sokuji again.", "このチャンネルで即時集計が見つかりません。再度即時集計を開始してください。"},
	"session_id_not_found":    {"Matching sokuji not found.", "該当する即時集計が見つかりません。"},
	"already_ended":           {"The sokuji has already ended.", "即時集計はすでに終了しています。"},
	"stale_message":           {"Some error has occurred. Please try again with the latest sokuji displayed by running `/sokuji now`.", "何らかのエラーが発生しました。`/sokuji now`を実行して表示された最新の即時集計に再度お試しください。"},
	"outdated_board":          {"This sokuji is not up to date. Please run it again.", "この即時集計は最新のものではありません。再度実行してください。"},
	"session_ended":           {"The sokuji has ended. Resume it to make changes.", "即時集計は終了しています。変更するには再開してください。"},
	"empty_session":           {"Sokuji is empty.", "即時集計が空です。"},
	"no_editable_track":       {"Sokuji is still empty, so there is no editable track.", "即時集計がまだ空なため、編集可能なコースがありません。"},
	"race_not_found":          {"Race %d does not exist.", "%dレース目は存在しません。"},
	"target_race_not_found":   {"The target race does not exist.", "対象のレースが存在しません。"},
	"invalid_format":          {"Invalid format. The format must be 2, 3, 4, or 6.", "無効な形式です。形式は2, 3, 4, 6のいずれかである必要があります。"},
	"invalid_characters":      {"Invalid characters: %s", "不正な文字: %s"},
	"tag_count_mismatch":      {"The number of tags is incorrect.", "タグの数が正しくありません。"},
	"invalid_value":           {"Invalid value.", "値が不正です。"},
	"race_num_too_small":      {"Please specify a value greater than or equal to 1.", "1以上の値を指定してください。"},
	"race_num_too_large":      {"Please specify a value less than 100.", "100未満の値を指定してください。"},
	"race_num_below_recorded": {"More than the specified number of races have already been registered. Please specify a value greater than or equal to %d.", "すでに指定されたレース数以上登録されています。%d以上の値を指定してください。"},
	"penalty_positive":        {"A penalty score must be 0 or less.", "ペナルティのスコアは0以下である必要があります。"},
	"bonus_negative":          {"A bonus score must be 0 or more.", "ボーナスのスコアは0以上である必要があります。"},
	"unexpected_error":        {"An unexpected error has occurred.", "予期せぬエラーが発生しました。"},

	// replies
	"ended":                {"Ended the sokuji.", "即時集計を終了しました。"},
	"all_races_recorded":   {"All races have already been recorded.", "すべてのレースが登録済みです。"},
	"deleted_pending_race": {"Deleted the pending race.", "追加中のレースを削除しました。"},
	"undid_pending_team":   {"Undo one team's ranks of the pending race.", "追加中のレースを1つ戻しました。"},
	"undid_latest":         {"Undo the latest.", "1つ戻しました。"},
	"undo_confirm":         {"This operation cannot be undone. Are you sure you want to undo the latest of this sokuji?", "この操作は取り消せません。即時集計を1つ戻してもよろしいですか？"},
	"edited_race_track":    {"Edited the track of race %d.", "%dレース目のコースを編集しました。"},
	"edited_latest_track":  {"Edited the latest track.", "最新のコースを編集しました。"},
	"edited_race_ranks":    {"Edited the ranks of race %d.", "%dレース目の順位を編集しました。"},
	"edited_race":          {"Edited race %d.", "%dレース目を編集しました。"},
	"added_other":          {"Added %s.", "%s を追加しました。"},
	"tags_edited":          {"Tags have been edited.", "タグを変更しました。"},
	"race_num_edited":      {"Total races has been edited.", "レース数を変更しました。"},
	"language_hint":        {"日本語への変更は設定の「日本語」ボタンを押してください。", "Switch to English by pressing the \"English\" button in the options."},
	"tags_hint":            {"Edit tags from the \"Edit Tags\" button in the options.", "タグの変更は設定の「タグ変更」ボタンから行ってください。"},
	"race_num_hint":        {"Edit the total races from the \"Edit Total Races\" button in the options.", "レース数の変更は設定の「レース数変更」ボタンから行ってください。"},
	"edit_latest_prompt":   {"Edit the latest race. Continue to enter the ranks.", "最新のレースを編集します。続けて順位を入力してください。"},
	"edit_race_prompt":     {"Edit race %d. Continue to enter the ranks.", "%dレース目を編集します。続けて順位を入力してください。"},
	"nick_set":             {"`%s` now means %s.", "`%s` は %s として扱われます。"},
	"nick_ignored":         {"`%s` no longer matches a track.", "`%s` はコースとして扱われなくなりました。"},
	"nick_cleared":         {"`%s` is back to the default.", "`%s` を既定に戻しました。"},
	"nick_usage":           {"Usage: `%%nick <nick> <track>`, `%%nick <nick> -` to ignore, `%%unnick <nick>` to reset.", "使い方: `%%nick <呼び名> <コース>`、無視する場合は `%%nick <呼び名> -`、戻す場合は `%%unnick <呼び名>`"},
	"track_not_found":      {"Track not found: %s", "コースが見つかりません: %s"},

	// board and panel labels
	"label_add":              {"Add", "追加"},
	"label_edit":             {"Edit", "編集"},
	"label_edit_track":       {"Edit Track", "コースを編集"},
	"label_undo":             {"Undo Last", "1つ戻す"},
	"label_resume":           {"Resume", "再開"},
	"label_confirm_undo":     {"Undo", "戻す"},
	"label_cancel":           {"Cancel", "キャンセル"},
	"label_enter":            {"Enter", "入力"},
	"label_scores":           {"Scores", "スコア"},
	"label_tracks":           {"Tracks", "コース"},
	"label_cup":              {"Cup", "カップ"},
	"label_track":            {"Track", "コース"},
	"label_show_text":        {"Show Text", "テキスト表示"},
	"label_hide_text":        {"Hide Text", "テキスト非表示"},
	"label_show_image":       {"Show Image", "画像表示"},
	"label_hide_image":       {"Hide Image", "画像非表示"},
	"label_mode":             {"Display Mode", "表示モード"},
	"label_edit_tags":        {"Edit Tags", "タグ変更"},
	"label_edit_race_num":    {"Edit Total Races", "レース数変更"},
	"mode_classic":           {"Classic", "クラシック"},
	"mode_compact":           {"Compact", "コンパクト"},
	"config_title":           {"Sokuji Options", "即時集計 設定"},
	"config_view":            {"View", "表示"},
	"config_view_body":       {"1. Text: Send a text for copy and paste.\n1. Image: Send an image similar to the stream widget.\n1. Mode:\n  - **Classic**: The conventional mode.\n  - **Compact**: A more concise mode that divides the content into tracks and scores.", "1. テキスト: コピペ用のテキストも送信します。\n1. 画像: 配信ウィジェットと同様の画像も送信します。\n1. モード:\n  - **クラシック**: 従来の表示方法です。\n  - **コンパクト**: 内容をコースとスコアに分けた、より簡潔な表示方法です。"},
	"config_widget":          {"Stream Widget", "配信ウィジェット"},
	"config_widget_body":     {"The stream widget URL for <#%s> is as follows.\nThis is fixed as long as you do sokuji in this channel.\n%s", "<#%s> チャンネル用の配信ウィジェットURLは以下です。\nこれはこのチャンネルで即時集計を行う限り固定です。\n%s"},
	"widget_title":           {"Stream Widget URL", "配信ウィジェットURL"},
	"widget_body":            {"- The URL for each user is fixed and does not change.\n- If you want to continue sokuji on the same channel, you do not need to rerun it.", "- ユーザー毎のURLは固定で変化しません。\n- 同じチャンネルで即時集計を続ける場合、再実行する必要はありません。"},
	"widget_user":            {"### For <@%s>\n%s", "### <@%s> さん用\n%s"},
	"modal_add_ranks":        {"Add Ranks", "順位を追加"},
	"modal_add_ranks_track":  {"Add Ranks and Track", "順位とコースを追加"},
	"modal_edit":             {"Edit", "編集"},
	"modal_edit_tags":        {"Edit Tags", "タグを変更"},
	"modal_edit_race_num":    {"Edit Total Races", "レース数を変更"},
	"field_race_number":      {"Race Number", "レース番号"},
	"field_race_number_hint": {"Edit the latest race if omitted", "省略した場合は最新のレースを編集"},
	"field_tags":             {"Tags (one per line)", "タグ (1行に1つ)"},
	"field_race_num":         {"Total Races", "レース数"},

	// slash command registration
	"cmd_sokuji":  {"Live race scoring", "即時集計"},
	"cmd_start":   {"Start a new sokuji", "即時集計を開始"},
	"cmd_end":     {"Ends the sokuji", "即時集計を終了"},
	"cmd_now":     {"Current sokuji", "現在の即時集計"},
	"cmd_repick":  {"Add repick", "リピックを追加"},
	"cmd_penalty": {"Add penalty", "ペナルティを追加"},
	"cmd_bonus":   {"Add bonus", "ボーナスを追加"},
	"opt_tags":    {"Tags separated by spaces", "タグを空白区切りで指定"},
	"opt_format":  {"Format", "形式"},
	"opt_tag":     {"Tag", "タグ"},
	"opt_score":   {"Score", "スコア"},
}
