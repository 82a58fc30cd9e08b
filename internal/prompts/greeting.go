// Package prompts implements MCP prompt handlers for support agents.
//
// Prompts are user-triggered templates. They read nothing from the store;
// they only render their arguments into a conversation opener.
package prompts

import (
	"context"
	"strings"

	"github.com/HendryAvila/chatdesk/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// GreetingPrompt handles the support_greeting MCP prompt.
type GreetingPrompt struct{}

// NewGreetingPrompt creates a GreetingPrompt.
func NewGreetingPrompt() *GreetingPrompt {
	return &GreetingPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *GreetingPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("support_greeting",
		mcp.WithPromptDescription("Generate a personalized greeting for a customer support conversation"),
		mcp.WithArgument("userName",
			mcp.ArgumentDescription("Name of the customer"),
		),
		mcp.WithArgument("issueType",
			mcp.ArgumentDescription("Type of issue the customer is experiencing"),
		),
	)
}

// Greeting renders the opener. Empty and "0" arguments are left out.
func Greeting(userName, issueType string) string {
	var b strings.Builder
	b.WriteString("Hello")
	if validate.PresentString(userName) {
		b.WriteString(" " + userName)
	}
	b.WriteString("! Thank you for contacting our support team.")
	if validate.PresentString(issueType) {
		b.WriteString(" I understand you're experiencing an issue with " + issueType + ".")
	}
	b.WriteString(" I'm here to help you resolve this as quickly as possible.")
	b.WriteString(" Could you please provide more details about what you're experiencing?")
	return b.String()
}

// Handle processes the support_greeting prompt request.
func (p *GreetingPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments

	return &mcp.GetPromptResult{
		Description: "Customer support greeting",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleAssistant,
				Content: mcp.NewTextContent(Greeting(args["userName"], args["issueType"])),
			},
		},
	}, nil
}
