package realtime

import "encoding/json"

// Change-event types pushed over the realtime channel. Clients upsert the
// carried row into local state by id.
const (
	EventMessageInsert = "message.insert"
	EventMessageUpdate = "message.update"
)

// ChangeEvent is a row-change notification scoped to one conversation.
type ChangeEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Row            json.RawMessage `json:"row"`
}

// NewChangeEvent builds a ChangeEvent from any JSON-encodable row.
func NewChangeEvent(eventType, conversationID string, row any) (ChangeEvent, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return ChangeEvent{}, err
	}
	return ChangeEvent{Type: eventType, ConversationID: conversationID, Row: raw}, nil
}
