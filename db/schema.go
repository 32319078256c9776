package db

// schema creates the base tables. Columns introduced later live in alterations.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(26) PRIMARY KEY COMMENT 'ULID',
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		role VARCHAR(20) NOT NULL COMMENT 'influencer, business',
		avatar_url VARCHAR(1024) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS influencer_profiles (
		user_id CHAR(26) PRIMARY KEY,
		display_name VARCHAR(255) NOT NULL,
		bio TEXT,
		niches TEXT COMMENT 'comma separated, lower case',
		location VARCHAR(255) NOT NULL DEFAULT '',
		followers_total INT NOT NULL DEFAULT 0,
		engagement_rate DOUBLE NOT NULL DEFAULT 0,
		views_count INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS business_profiles (
		user_id CHAR(26) PRIMARY KEY,
		company_name VARCHAR(255) NOT NULL,
		website VARCHAR(1024) NOT NULL DEFAULT '',
		industry VARCHAR(255) NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS social_accounts (
		id CHAR(26) PRIMARY KEY COMMENT 'ULID',
		user_id CHAR(26) NOT NULL,
		platform VARCHAR(20) NOT NULL,
		external_id VARCHAR(255) NOT NULL DEFAULT '',
		handle VARCHAR(255) NOT NULL DEFAULT '',
		access_token TEXT,
		refresh_token TEXT,
		token_expiry TIMESTAMP NULL,
		followers INT NOT NULL DEFAULT 0,
		engagement_rate DOUBLE NOT NULL DEFAULT 0,
		synced_at TIMESTAMP NULL,
		UNIQUE KEY uniq_user_platform (user_id, platform),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id CHAR(26) PRIMARY KEY COMMENT 'ULID',
		business_id CHAR(26) NOT NULL,
		title VARCHAR(255) NOT NULL,
		brief TEXT NOT NULL,
		budget INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL COMMENT 'draft, matched, outreach, closed',
		criteria TEXT,
		filters TEXT COMMENT 'JSON',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (business_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS inquiries (
		id CHAR(26) PRIMARY KEY COMMENT 'ULID',
		business_id CHAR(26) NOT NULL,
		influencer_id CHAR(26) NOT NULL,
		campaign_id CHAR(26) NULL,
		subject VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		budget INT NULL,
		deliverables TEXT,
		status VARCHAR(20) NOT NULL,
		recommendation VARCHAR(20) NULL,
		recommendation_reason TEXT,
		proposed_rate INT NULL,
		agent_turns INT NOT NULL DEFAULT 0,
		last_activity_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_status_activity (status, last_activity_at),
		FOREIGN KEY (business_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (influencer_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id CHAR(26) PRIMARY KEY COMMENT 'ULID',
		inquiry_id CHAR(26) NOT NULL,
		sender_id CHAR(26) NOT NULL,
		sender_role VARCHAR(20) NOT NULL,
		content TEXT NOT NULL,
		is_ai_response BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (inquiry_id) REFERENCES inquiries(id) ON DELETE CASCADE,
		FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS negotiation_logs (
		id CHAR(26) PRIMARY KEY COMMENT 'ULID',
		inquiry_id CHAR(26) NOT NULL,
		business_id CHAR(26) NOT NULL,
		offered_rate INT NOT NULL DEFAULT 0,
		ai_decision VARCHAR(50) NOT NULL COMMENT 'CONTINUE, RECOMMEND',
		recommendation VARCHAR(20) NULL,
		counter_rate INT NOT NULL DEFAULT 0,
		ai_reasoning TEXT,
		log_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (inquiry_id) REFERENCES inquiries(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS campaign_candidates (
		campaign_id CHAR(26) NOT NULL,
		influencer_id CHAR(26) NOT NULL,
		score DOUBLE NOT NULL DEFAULT 0,
		rationale TEXT,
		rank_no INT NOT NULL,
		outreach_draft TEXT,
		inquiry_id CHAR(26) NULL,
		status VARCHAR(20) NOT NULL COMMENT 'suggested, drafted, contacted',
		PRIMARY KEY (campaign_id, influencer_id),
		FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE,
		FOREIGN KEY (influencer_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}
