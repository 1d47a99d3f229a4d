package gatewaysmoke

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/sjson"
)

const (
	// DefaultChatQuestion is the static question asked by the chat smoke test.
	DefaultChatQuestion = "How many countries are there in the European Union?"

	// DefaultVisionInstruction accompanies the image in the vision smoke test.
	DefaultVisionInstruction = "Describe the image"
)

// Role is a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message. Only role and content are forwarded to
// the gateway.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage is shorthand for a user-authored Message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

const (
	emptyMessagesBody  = `{"messages":[]}`
	visionBodyTemplate = `{"messages":[{"role":"user","content":[{"image":""},""]}]}`
)

// BuildChatBody encodes messages as {"messages":[{"role":...,"content":...}]}.
func BuildChatBody(messages ...Message) ([]byte, error) {
	if len(messages) == 0 {
		return nil, errors.New("chat body requires at least one message")
	}

	body := []byte(emptyMessagesBody)
	var err error
	for i, msg := range messages {
		if msg.Role == "" {
			return nil, fmt.Errorf("message %d has no role", i)
		}
		prefix := "messages." + strconv.Itoa(i)
		body, err = sjson.SetRawBytes(body, "messages.-1", []byte(`{}`))
		if err != nil {
			return nil, fmt.Errorf("failed to append message %d: %w", i, err)
		}
		body, err = sjson.SetBytes(body, prefix+".role", string(msg.Role))
		if err != nil {
			return nil, fmt.Errorf("failed to set role of message %d: %w", i, err)
		}
		body, err = sjson.SetBytes(body, prefix+".content", msg.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to set content of message %d: %w", i, err)
		}
	}
	return body, nil
}

// BuildVisionBody encodes one user message whose content list holds the
// base64 image followed by the plain-text instruction:
//
//	{"messages":[{"role":"user","content":[{"image":"<b64>"},"<instruction>"]}]}
func BuildVisionBody(imageBase64, instruction string) ([]byte, error) {
	if imageBase64 == "" {
		return nil, errors.New("vision body requires image data")
	}

	body, err := sjson.SetBytes([]byte(visionBodyTemplate), "messages.0.content.0.image", imageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	body, err = sjson.SetBytes(body, "messages.0.content.1", instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to set instruction: %w", err)
	}
	return body, nil
}
