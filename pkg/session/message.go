package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types accepted on the input stream.
const (
	TypeCommand = "command"
	TypePower   = "power"
	TypeClose   = "close"
)

// Message is one decoded input line.
type Message struct {
	Type string
	// Command and Action are empty when absent.
	Command string
	Action  string
	// HasAction reports whether the action field was present, even as null.
	HasAction bool
}

var errInvalidJSON = errors.New("invalid json")

// ParseMessage decodes one input line. Valid JSON that is not an object
// yields a Message with an empty Type.
func ParseMessage(line []byte) (Message, error) {
	var raw any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Message{}, errInvalidJSON
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Message{}, nil
	}

	var msg Message
	msg.Type, _ = obj["type"].(string)
	msg.Command, _ = obj["command"].(string)
	if v, ok := obj["action"]; ok {
		msg.HasAction = true
		if v != nil {
			msg.Action = stringify(v)
		}
	}
	return msg, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
