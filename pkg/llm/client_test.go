package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReplyTextOnly(t *testing.T) {
	response := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: "  We answer every call so you never miss a lead.  ",
				},
			},
		},
	}

	reply, err := decodeReply(response)
	require.NoError(t, err)
	assert.Equal(t, "We answer every call so you never miss a lead.", reply.Text)
	assert.Nil(t, reply.Action)
}

func TestDecodeReplyBookingAction(t *testing.T) {
	response := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: "Let me get that on the calendar for you.",
					ToolCalls: []openai.ToolCall{
						{
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "book_appointment",
								Arguments: `{"summary":"Demo with Dana","start_time":"2026-09-02T14:00:00-05:00","end_time":"2026-09-02T14:30:00-05:00","attendee_email":"dana@acme.com"}`,
							},
						},
					},
				},
			},
		},
	}

	reply, err := decodeReply(response)
	require.NoError(t, err)
	require.NotNil(t, reply.Action)
	assert.Equal(t, ActionBookAppointment, reply.Action.Kind)
	assert.Equal(t, "Demo with Dana", reply.Action.Args["summary"])
	assert.Equal(t, "dana@acme.com", reply.Action.Args["attendee_email"])
}

func TestDecodeReplyIgnoresUnknownTool(t *testing.T) {
	response := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: "Sure thing.",
					ToolCalls: []openai.ToolCall{
						{
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "transfer_call",
								Arguments: `{}`,
							},
						},
					},
				},
			},
		},
	}

	reply, err := decodeReply(response)
	require.NoError(t, err)
	assert.Nil(t, reply.Action)
}

func TestDecodeReplyMalformedArguments(t *testing.T) {
	response := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{
						{
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "send_setup_link",
								Arguments: `{"email": `,
							},
						},
					},
				},
			},
		},
	}

	_, err := decodeReply(response)
	assert.Error(t, err)
}

func TestDecodeReplyEmptyChoices(t *testing.T) {
	_, err := decodeReply(openai.ChatCompletionResponse{})
	assert.Error(t, err)
}

func TestDecodeReplyFirstActionWins(t *testing.T) {
	response := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{
						{
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "send_setup_link",
								Arguments: `{"email":"first@acme.com"}`,
							},
						},
						{
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "book_appointment",
								Arguments: `{"summary":"second"}`,
							},
						},
					},
				},
			},
		},
	}

	reply, err := decodeReply(response)
	require.NoError(t, err)
	require.NotNil(t, reply.Action)
	assert.Equal(t, ActionSendSetupLink, reply.Action.Kind)
}
