package db

// backfills fill columns added by alterations for rows written before them.
// Each one only touches rows still missing the value, so reruns are no-ops.
var backfills = []string{
	// Logs from before message_id were matched to replies by timestamp.
	`UPDATE negotiation_logs l
		JOIN messages m ON m.inquiry_id = l.inquiry_id AND m.is_ai_response = TRUE
			AND ABS(TIMESTAMPDIFF(SECOND, l.log_time, m.created_at)) <= 2
		SET l.message_id = m.id
		WHERE l.message_id IS NULL`,
	`UPDATE messages SET is_approved = TRUE WHERE is_approved IS NULL`,
}
