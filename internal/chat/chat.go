// Package chat implements the small slice of the Minecraft chat-component
// JSON format this module needs: the status response's description field
// and login-failure disconnect reasons. Modeled on
// ChickenIQ-VibeShitCraft's pkg/chat/chat.go.
package chat

import "encoding/json"

// Message is a Minecraft JSON chat component.
type Message struct {
	Text  string    `json:"text"`
	Color string    `json:"color,omitempty"`
	Extra []Message `json:"extra,omitempty"`
}

// String serializes the message to its JSON wire form.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// Text creates a plain chat message with no formatting.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a colored chat message.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// Disconnect creates the reason message for a kick: red text, matching
// the color notchian clients render a Disconnect packet's reason in
// regardless of what the server sends as plain text. Every Disconnect packet
// this module sends is built with this constructor rather than Text, so a
// rejected client sees the same kick styling whether it was turned away by
// a rate limit, an invalid username, or a failed online-mode login. Protocol
// and decode errors close the connection without a Disconnect packet.
func Disconnect(text string) Message {
	return Colored(text, "red")
}
