package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobcore/internal/logging"
)

type copilotMetadata struct {
	ClientMessageID string   `json:"clientMessageId,omitempty"`
	FieldID         string   `json:"fieldId,omitempty"`
	Rationale       string   `json:"rationale,omitempty"`
	Value           string   `json:"value,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	Source          string   `json:"source,omitempty"`
}

// AppendCopilotMessage preserves order by createdAt. A user message
// carrying a clientMessageId that already exists in the conversation is a
// no-op: the append is idempotent (spec §4.F, §8 invariant 8).
func (s *Store) AppendCopilotMessage(jobID string, msg CopilotMessage) (CopilotMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ClientMessageID != "" {
		var existingID string
		err := s.db.QueryRow(`
			SELECT message_id FROM copilot_messages WHERE job_id = ? AND client_message_id = ?
		`, jobID, msg.ClientMessageID).Scan(&existingID)
		if err == nil {
			logging.Job("job=%s: copilot message with clientMessageId=%s already recorded, skipping", jobID, msg.ClientMessageID)
			msg.ID = existingID
			return msg, nil
		}
		if err != sql.ErrNoRows {
			return CopilotMessage{}, fmt.Errorf("jobstore: append copilot message: dedup check: %w", err)
		}
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	metaBody, err := json.Marshal(copilotMetadata{
		ClientMessageID: msg.ClientMessageID,
		FieldID:         msg.FieldID,
		Rationale:       msg.Rationale,
		Value:           msg.Value,
		Confidence:      msg.Confidence,
		Source:          msg.Source,
	})
	if err != nil {
		return CopilotMessage{}, fmt.Errorf("jobstore: append copilot message: encode metadata: %w", err)
	}

	var clientMessageID sql.NullString
	if msg.ClientMessageID != "" {
		clientMessageID = sql.NullString{String: msg.ClientMessageID, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO copilot_messages (job_id, message_id, client_message_id, role, content, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, jobID, msg.ID, clientMessageID, msg.Role, msg.Content, metaBody, msg.CreatedAt)
	if err != nil {
		return CopilotMessage{}, fmt.Errorf("jobstore: append copilot message: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return CopilotMessage{}, fmt.Errorf("jobstore: append copilot message: %w", err)
	}

	logging.Job("job=%s: copilot message appended, role=%s", jobID, msg.Role)
	return msg, nil
}

// GetConversation returns the job's full copilot conversation in
// createdAt order.
func (s *Store) GetConversation(jobID string) ([]CopilotMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT message_id, client_message_id, role, content, metadata_json, created_at
		FROM copilot_messages WHERE job_id = ? ORDER BY created_at ASC, message_id ASC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobstore: get conversation: %w", err)
	}
	defer rows.Close()

	var messages []CopilotMessage
	for rows.Next() {
		var msg CopilotMessage
		var clientMessageID, metaBody sql.NullString
		if err := rows.Scan(&msg.ID, &clientMessageID, &msg.Role, &msg.Content, &metaBody, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("jobstore: scan copilot message: %w", err)
		}
		msg.ClientMessageID = clientMessageID.String
		if metaBody.Valid {
			var meta copilotMetadata
			if err := json.Unmarshal([]byte(metaBody.String), &meta); err == nil {
				msg.FieldID = meta.FieldID
				msg.Rationale = meta.Rationale
				msg.Value = meta.Value
				msg.Confidence = meta.Confidence
				msg.Source = meta.Source
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
