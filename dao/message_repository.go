package dao

import (
	"context"
	"database/sql"
	"errors"

	"collab-backend/model"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (id, inquiry_id, sender_id, sender_role, content, is_ai_response, is_approved, suggested_rate, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.InquiryID, msg.SenderID, msg.SenderRole, msg.Content,
		msg.IsAIResponse, msg.IsApproved, nullInt(msg.SuggestedRate), msg.CreatedAt)
	return err
}

// GetMessagesByInquiryID returns the conversation oldest first. Agent replies
// carry the reasoning of the negotiation log that produced them.
func (r *MessageRepository) GetMessagesByInquiryID(ctx context.Context, inquiryID string) ([]model.Message, error) {
	query := `SELECT m.id, m.inquiry_id, m.sender_id, m.sender_role, m.content, m.is_ai_response, m.is_approved, m.suggested_rate, m.created_at, l.ai_reasoning
              FROM messages m
              LEFT JOIN negotiation_logs l ON l.message_id = m.id
              WHERE m.inquiry_id = ?
              ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, inquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var msg model.Message
		var reasoning sql.NullString
		var suggestedRate sql.NullInt64
		if err := rows.Scan(&msg.ID, &msg.InquiryID, &msg.SenderID, &msg.SenderRole, &msg.Content, &msg.IsAIResponse,
			&msg.IsApproved, &suggestedRate, &msg.CreatedAt, &reasoning); err != nil {
			return nil, err
		}
		msg.AIReasoning = reasoning.String
		msg.SuggestedRate = intPtr(suggestedRate)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) GetMessageByID(ctx context.Context, id string) (*model.Message, error) {
	query := `SELECT id, inquiry_id, sender_id, sender_role, content, is_ai_response, is_approved, suggested_rate, created_at FROM messages WHERE id = ?`
	var m model.Message
	var suggestedRate sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.InquiryID, &m.SenderID, &m.SenderRole, &m.Content,
		&m.IsAIResponse, &m.IsApproved, &suggestedRate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	m.SuggestedRate = intPtr(suggestedRate)
	return &m, nil
}

func (r *MessageRepository) ApproveMessage(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_approved = TRUE WHERE id = ?`, messageID)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrNotFound)
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	return err
}

func (r *MessageRepository) CreateNegotiationLog(ctx context.Context, log *model.NegotiationLog) error {
	query := `INSERT INTO negotiation_logs (id, inquiry_id, message_id, business_id, offered_rate, ai_decision, recommendation, counter_rate, ai_reasoning, log_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var messageID sql.NullString
	if log.MessageID != "" {
		messageID = sql.NullString{String: log.MessageID, Valid: true}
	}
	var rec sql.NullString
	if log.Recommendation != "" {
		rec = sql.NullString{String: string(log.Recommendation), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, log.ID, log.InquiryID, messageID, log.BusinessID, log.OfferedRate,
		log.AIDecision, rec, log.CounterRate, log.AIReasoning, log.LogTime)
	return err
}

func (r *MessageRepository) ListNegotiationLogs(ctx context.Context, inquiryID string) ([]model.NegotiationLog, error) {
	query := `SELECT id, inquiry_id, message_id, business_id, offered_rate, ai_decision, recommendation, counter_rate, ai_reasoning, log_time
              FROM negotiation_logs WHERE inquiry_id = ? ORDER BY log_time ASC`
	rows, err := r.db.QueryContext(ctx, query, inquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.NegotiationLog
	for rows.Next() {
		var l model.NegotiationLog
		var messageID, rec, reasoning sql.NullString
		if err := rows.Scan(&l.ID, &l.InquiryID, &messageID, &l.BusinessID, &l.OfferedRate, &l.AIDecision, &rec,
			&l.CounterRate, &reasoning, &l.LogTime); err != nil {
			return nil, err
		}
		l.MessageID = messageID.String
		l.Recommendation = model.Recommendation(rec.String)
		l.AIReasoning = reasoning.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
