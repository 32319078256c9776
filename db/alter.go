package db

// alterations add columns to tables created by earlier releases. MySQL 8.0 has
// no ADD COLUMN IF NOT EXISTS, so "Duplicate column name" is treated as applied.
var alterations = []string{
	"ALTER TABLE influencer_profiles ADD COLUMN agent_enabled BOOLEAN DEFAULT FALSE",
	"ALTER TABLE influencer_profiles ADD COLUMN min_rate INT NOT NULL DEFAULT 0",
	"ALTER TABLE influencer_profiles ADD COLUMN preferences TEXT",
	"ALTER TABLE influencer_profiles ADD COLUMN tone VARCHAR(50) NOT NULL DEFAULT ''",
	"ALTER TABLE influencer_profiles ADD COLUMN review_replies BOOLEAN DEFAULT FALSE",
	"ALTER TABLE influencer_profiles ADD COLUMN max_turns INT NOT NULL DEFAULT 0",
	"ALTER TABLE messages ADD COLUMN is_approved BOOLEAN DEFAULT TRUE",
	"ALTER TABLE messages ADD COLUMN suggested_rate INT NULL",
	"ALTER TABLE negotiation_logs ADD COLUMN message_id CHAR(26) NULL",
}
