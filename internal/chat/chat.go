// Package chat holds the vendor-neutral request shapes accepted by the
// gateway.
package chat

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultTemperature = 0.7

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	ModelID  string
	Messages []Message
	// Temperature is always set; callers that omit it get DefaultTemperature.
	Temperature float64
}

var (
	ErrModelRequired    = errors.New("modelId is required")
	ErrMessagesRequired = errors.New("messages must be an array")
)

// Validate reports the first problem with r. A nil Messages slice means the
// caller did not send an array; an empty one is allowed.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ModelID) == "" {
		return ErrModelRequired
	}
	if r.Messages == nil {
		return ErrMessagesRequired
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("messages[%d].role must be system, user or assistant", i)
		}
	}
	return nil
}

// Split separates system messages from the conversation. System contents are
// joined with newlines in their original order; the conversation keeps every
// other message untouched and in order.
func Split(messages []Message) (string, []Message) {
	var system []string
	conversation := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		conversation = append(conversation, m)
	}
	return strings.Join(system, "\n"), conversation
}
