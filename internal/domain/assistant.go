package domain

import "time"

// AssistantAnswer is a structured shopping-assistant reply: the generated
// text plus the product cards the client renders alongside it. MessageID
// ties the cards to the message on the client side.
type AssistantAnswer struct {
	MessageID string           `json:"message_id"`
	Text      string           `json:"text"`
	Products  []Recommendation `json:"products"`
	Query     string           `json:"query"`
	CreatedAt time.Time        `json:"created_at"`
}
