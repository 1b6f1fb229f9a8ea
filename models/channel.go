package models

import "time"

type Channel struct {
	ID               string    `json:"id"`
	DiscordChannelID string    `json:"discord_channel_id"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
}

type Thread struct {
	ID              string    `json:"id"`
	DiscordThreadID string    `json:"discord_thread_id"`
	ChannelID       string    `json:"channel_id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	IsActive        bool      `json:"is_active"`
}
