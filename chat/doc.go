// Package chat connects sokuji to Twitch chat.
//
// The Listener joins TWITCH_CHANNELS over IRC and feeds every PRIVMSG into
// the bot's text path: prefixed commands, track names and rank input. Each
// Twitch channel is keyed as "twitch:<login>" so its sessions and locks never
// collide with Discord channel ids.
//
// IRC cannot edit or delete messages, so boards are re-sent as plain text and
// the Messenger is a no-op. Run keeps the connection alive, reconnecting
// with backoff until the context ends.
//
// Credentials: the IRC client requires a bot username and an OAuth token with
// chat:read/chat:edit scopes.
package chat
