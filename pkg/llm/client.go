package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ActionKind names a business action the model may request
type ActionKind string

const (
	ActionBookAppointment ActionKind = "book_appointment"
	ActionSendSetupLink   ActionKind = "send_setup_link"
)

// Message one turn of conversation history
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ActionRequest a structured action the model asked for
type ActionRequest struct {
	Kind ActionKind        `json:"kind"`
	Args map[string]string `json:"args"`
}

// Reply the model's answer to one caller turn
type Reply struct {
	Text   string
	Action *ActionRequest
}

// Define the function for booking a demo appointment
var bookAppointmentDefinition = openai.FunctionDefinition{
	Name:        string(ActionBookAppointment),
	Description: "Book a demo appointment on the calendar when the caller agrees to a specific time",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"summary": {
				"type": "string",
				"description": "Short title for the calendar event"
			},
			"description": {
				"type": "string",
				"description": "Details about the caller and what they want to see"
			},
			"start_time": {
				"type": "string",
				"description": "Appointment start in RFC3339 format"
			},
			"end_time": {
				"type": "string",
				"description": "Appointment end in RFC3339 format"
			},
			"attendee_email": {
				"type": "string",
				"description": "Email address of the caller to invite"
			}
		},
		"required": ["summary", "start_time", "end_time"]
	}`),
}

var sendSetupLinkDefinition = openai.FunctionDefinition{
	Name:        string(ActionSendSetupLink),
	Description: "Email the caller a link to set up their own AI receptionist",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"email": {
				"type": "string",
				"description": "Email address to send the setup link to"
			},
			"name": {
				"type": "string",
				"description": "Caller's name for the email greeting"
			}
		},
		"required": ["email"]
	}`),
}

// Client talks to an OpenAI compatible chat completion endpoint
type Client struct {
	api    *openai.Client
	config *Config
	logger *logrus.Logger
}

// NewClient creates a chat client from config
func NewClient(cfg *Config, logger *logrus.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(apiConfig),
		config: cfg,
		logger: logger,
	}
}

// Respond produces the assistant's reply for one caller turn.
// History carries the prior turns; the system prompt comes from the
// receptionist profile, not the history.
func (c *Client) Respond(ctx context.Context, systemPrompt string, history []Message) (*Reply, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	request := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Tools: []openai.Tool{
			{Type: openai.ToolTypeFunction, Function: &bookAppointmentDefinition},
			{Type: openai.ToolTypeFunction, Function: &sendSetupLinkDefinition},
		},
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	response, err := c.api.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("error creating chat completion: %w", err)
	}

	reply, err := decodeReply(response)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"text":      reply.Text,
		"hasAction": reply.Action != nil,
	}).Info("LLM reply completed")

	return reply, nil
}

// decodeReply extracts the spoken text and at most one action request
// from a completion response. Extra tool calls beyond the first are ignored.
func decodeReply(response openai.ChatCompletionResponse) (*Reply, error) {
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	choice := response.Choices[0].Message
	reply := &Reply{Text: strings.TrimSpace(choice.Content)}

	for _, toolCall := range choice.ToolCalls {
		if toolCall.Type != openai.ToolTypeFunction {
			continue
		}
		kind := ActionKind(toolCall.Function.Name)
		if kind != ActionBookAppointment && kind != ActionSendSetupLink {
			continue
		}

		args := map[string]string{}
		if toolCall.Function.Arguments != "" {
			var raw map[string]interface{}
			if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &raw); err != nil {
				return nil, fmt.Errorf("malformed tool arguments for %s: %w", kind, err)
			}
			for key, value := range raw {
				if s, ok := value.(string); ok {
					args[key] = s
				} else {
					args[key] = fmt.Sprintf("%v", value)
				}
			}
		}

		reply.Action = &ActionRequest{Kind: kind, Args: args}
		break
	}

	return reply, nil
}
