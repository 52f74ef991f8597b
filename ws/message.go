package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// SubscribeMsg replaces the set of views a client is notified about.
// An empty list subscribes to every view.
type SubscribeMsg struct {
	Type  string   `json:"type"`
	Views []string `json:"views"`
}

// --- Server-to-Client messages ---

// InvalidateMsg tells clients that the data behind these views changed and should be refetched.
type InvalidateMsg struct {
	Type  string   `json:"type"`
	Views []string `json:"views"`
}

// SubscribedMsg confirms a subscription.
type SubscribedMsg struct {
	Type  string   `json:"type"`
	Views []string `json:"views"`
}

// ErrorMsg is sent when a client message is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
