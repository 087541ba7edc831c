package models

// Chat roles match the wire values expected by the generation service.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one entry of a conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
