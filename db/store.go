package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/tracks"
)

// Store is the Postgres implementation of the session, track and guild
// stores.
type Store struct{ DB *sql.DB }

var (
	_ sokuji.SessionStore   = (*Store)(nil)
	_ sokuji.GuildDirectory = (*Store)(nil)
	_ tracks.Store          = (*Store)(nil)
)

func NewStore(db *sql.DB) *Store { return &Store{DB: db} }

func (s *Store) GetSession(ctx context.Context, id string) (sokuji.Record, error) {
	var raw []byte
	err := s.DB.QueryRowContext(ctx, `SELECT record FROM sokuji_sessions WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return sokuji.Record{}, sokuji.ErrNotFound
	}
	if err != nil {
		return sokuji.Record{}, err
	}
	var rec sokuji.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return sokuji.Record{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) CurrentSessionID(ctx context.Context, channelID string) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, `SELECT session_id FROM sokuji_channels WHERE channel_id=$1`, channelID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sokuji.ErrNotFound
	}
	return id, err
}

// PutSession upserts rec and, with updateChannel, repoints the channel at it
// in the same transaction.
func (s *Store) PutSession(ctx context.Context, rec sokuji.Record, updateChannel bool) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.ID, err)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `INSERT INTO sokuji_sessions(id, channel_id, guild_id, is_ended, record, created_at, updated_at)
		VALUES($1,$2,$3,$4,$5,NOW(),NOW())
		ON CONFLICT(id) DO UPDATE SET
			channel_id=EXCLUDED.channel_id,
			guild_id=EXCLUDED.guild_id,
			is_ended=EXCLUDED.is_ended,
			record=EXCLUDED.record,
			updated_at=NOW()`,
		rec.ID, rec.ChannelID, rec.GuildID, rec.IsEnded, string(raw))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if updateChannel {
		_, err = tx.ExecContext(ctx, `INSERT INTO sokuji_channels(channel_id, session_id, updated_at) VALUES($1,$2,NOW())
			ON CONFLICT(channel_id) DO UPDATE SET session_id=EXCLUDED.session_id, updated_at=NOW()`,
			rec.ChannelID, rec.ID)
		if err != nil {
			return fmt.Errorf("point channel at session: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetConfig(ctx context.Context, channelID string) (sokuji.Config, error) {
	var cfg sokuji.Config
	var mode string
	err := s.DB.QueryRowContext(ctx, `SELECT is_ja, show_text, show_image, mode FROM sokuji_configs WHERE channel_id=$1`, channelID).
		Scan(&cfg.IsJa, &cfg.ShowText, &cfg.ShowImage, &mode)
	if errors.Is(err, sql.ErrNoRows) {
		return sokuji.Config{}, sokuji.ErrNotFound
	}
	if err != nil {
		return sokuji.Config{}, err
	}
	cfg.Mode = sokuji.ParseMode(mode)
	return cfg, nil
}

func (s *Store) PutConfig(ctx context.Context, channelID string, cfg sokuji.Config) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO sokuji_configs(channel_id, is_ja, show_text, show_image, mode, updated_at)
		VALUES($1,$2,$3,$4,$5,NOW())
		ON CONFLICT(channel_id) DO UPDATE SET
			is_ja=EXCLUDED.is_ja,
			show_text=EXCLUDED.show_text,
			show_image=EXCLUDED.show_image,
			mode=EXCLUDED.mode,
			updated_at=NOW()`,
		channelID, cfg.IsJa, cfg.ShowText, cfg.ShowImage, string(sokuji.ParseMode(string(cfg.Mode))))
	return err
}

func (s *Store) PutWidgetChannel(ctx context.Context, userID, channelID string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO sokuji_widget_users(user_id, channel_id, updated_at) VALUES($1,$2,NOW())
		ON CONFLICT(user_id) DO UPDATE SET channel_id=EXCLUDED.channel_id, updated_at=NOW()`, userID, channelID)
	return err
}

func (s *Store) WidgetChannel(ctx context.Context, userID string) (string, error) {
	var channelID string
	err := s.DB.QueryRowContext(ctx, `SELECT channel_id FROM sokuji_widget_users WHERE user_id=$1`, userID).Scan(&channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sokuji.ErrNotFound
	}
	return channelID, err
}

func (s *Store) LatestTrack(ctx context.Context, channelID string) (int, time.Time, error) {
	var id int
	var at time.Time
	err := s.DB.QueryRowContext(ctx, `SELECT track_id, updated_at FROM latest_tracks WHERE channel_id=$1`, channelID).Scan(&id, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, tracks.ErrNotFound
	}
	return id, at, err
}

func (s *Store) PutLatestTrack(ctx context.Context, channelID string, trackID int, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO latest_tracks(channel_id, track_id, updated_at) VALUES($1,$2,$3)
		ON CONFLICT(channel_id) DO UPDATE SET track_id=EXCLUDED.track_id, updated_at=EXCLUDED.updated_at`,
		channelID, trackID, at.UTC())
	return err
}

func (s *Store) Overrides(ctx context.Context, scope tracks.Scope, ownerID string) (tracks.Overrides, error) {
	var ignores, additionals []byte
	err := s.DB.QueryRowContext(ctx, `SELECT ignores, additionals FROM track_overrides WHERE scope=$1 AND owner_id=$2`,
		string(scope), ownerID).Scan(&ignores, &additionals)
	if errors.Is(err, sql.ErrNoRows) {
		return tracks.Overrides{}, tracks.ErrNotFound
	}
	if err != nil {
		return tracks.Overrides{}, err
	}
	var o tracks.Overrides
	if err := json.Unmarshal(ignores, &o.Ignores); err != nil {
		return tracks.Overrides{}, fmt.Errorf("decode ignores: %w", err)
	}
	if err := json.Unmarshal(additionals, &o.Additionals); err != nil {
		return tracks.Overrides{}, fmt.Errorf("decode additionals: %w", err)
	}
	return o, nil
}

func (s *Store) PutOverrides(ctx context.Context, scope tracks.Scope, ownerID string, o tracks.Overrides) error {
	if o.Ignores == nil {
		o.Ignores = []string{}
	}
	if o.Additionals == nil {
		o.Additionals = map[string]int{}
	}
	ignores, err := json.Marshal(o.Ignores)
	if err != nil {
		return err
	}
	additionals, err := json.Marshal(o.Additionals)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO track_overrides(scope, owner_id, ignores, additionals, updated_at)
		VALUES($1,$2,$3,$4,NOW())
		ON CONFLICT(scope, owner_id) DO UPDATE SET ignores=EXCLUDED.ignores, additionals=EXCLUDED.additionals, updated_at=NOW()`,
		string(scope), ownerID, string(ignores), string(additionals))
	return err
}

// GuildProfile returns the stored guild profile, or nil when the guild has
// none.
func (s *Store) GuildProfile(ctx context.Context, guildID string) (*sokuji.GuildProfile, error) {
	var p sokuji.GuildProfile
	err := s.DB.QueryRowContext(ctx, `SELECT tag, color, is_ja FROM guild_profiles WHERE guild_id=$1`, guildID).
		Scan(&p.Tag, &p.Color, &p.IsJa)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PutGuildProfile upserts a guild profile.
func (s *Store) PutGuildProfile(ctx context.Context, guildID string, p sokuji.GuildProfile) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO guild_profiles(guild_id, tag, color, is_ja, updated_at) VALUES($1,$2,$3,$4,NOW())
		ON CONFLICT(guild_id) DO UPDATE SET tag=EXCLUDED.tag, color=EXCLUDED.color, is_ja=EXCLUDED.is_ja, updated_at=NOW()`,
		guildID, p.Tag, p.Color, p.IsJa)
	return err
}

// GetKV returns the value stored under key and whether it exists.
func (s *Store) GetKV(ctx context.Context, key string) (string, bool, error) {
	var v sql.NullString
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v.String, true, nil
}

// SetKV upserts key.
func (s *Store) SetKV(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO kv(key, value, updated_at) VALUES($1,$2,NOW())
		ON CONFLICT(key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`, key, value)
	return err
}
