package gatewaysmoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// DefaultAgentMemory is how many earlier messages an Agent replays.
	DefaultAgentMemory = 10

	// AgentProbeName prefixes the name of every agent probe.
	AgentProbeName = "agent"

	// maxContextTokens is the rough budget for replayed context. Past it the
	// older half of the context is dropped.
	maxContextTokens = 2000

	// maxAgentReplyLength bounds an acceptable reply, in characters.
	maxAgentReplyLength = 4000
)

const agentGuidelines = `Important guidelines:
1. Be concise but thorough
2. Focus on accuracy and relevance
3. Maintain professional tone
4. Cite sources when applicable
5. Avoid repetition and redundancy`

// ErrInvalidReply is returned by Agent.Ask when the gateway answered 200 but
// the reply is empty or implausibly long.
var ErrInvalidReply = errors.New("invalid agent reply")

// Agent is a named persona that talks to the chat endpoint with a composed
// system prompt and a bounded memory of the conversation so far.
//
// An Agent is safe for concurrent use.
type Agent struct {
	Name         string
	ShortName    string
	Description  string
	Instructions string

	// MaxMemory bounds the replayed context; DefaultAgentMemory when zero.
	MaxMemory int

	mu     sync.Mutex
	memory []Message
}

// NewAgent creates an agent whose short name is its name.
func NewAgent(name, description, instructions string) *Agent {
	return &Agent{
		Name:         name,
		ShortName:    name,
		Description:  description,
		Instructions: instructions,
	}
}

// ResearchAgent gathers and analyses information.
func ResearchAgent() *Agent {
	a := NewAgent("Researcher", "Specializes in gathering and analyzing information", `Your role is to:
1. Research and gather relevant information
2. Analyze data and identify key patterns
3. Provide factual, well-researched responses
4. Cite sources when possible
Always maintain academic rigor and fact-check information.`)
	a.ShortName = "Research"
	return a
}

// WriterAgent turns ideas into structured prose.
func WriterAgent() *Agent {
	return NewAgent("Writer", "Crafts engaging and well-structured content", `Your role is to:
1. Transform ideas into clear, engaging content
2. Maintain consistent tone and style
3. Structure information logically
4. Adapt writing style to the target audience
Focus on clarity, engagement, and proper structure.`)
}

// CriticAgent reviews content quality.
func CriticAgent() *Agent {
	return NewAgent("Critic", "Reviews and improves content quality", `Your role is to:
1. Review content for accuracy and clarity
2. Suggest improvements and refinements
3. Identify potential issues or gaps
4. Ensure content meets high-quality standards
Provide constructive feedback and specific improvements.`)
}

var builtinAgents = map[string]func() *Agent{
	"research": ResearchAgent,
	"writer":   WriterAgent,
	"critic":   CriticAgent,
}

// AgentNames lists the keys accepted by AgentByName, sorted.
func AgentNames() []string {
	names := make([]string, 0, len(builtinAgents))
	for name := range builtinAgents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AgentByName returns a fresh built-in agent, matched case-insensitively.
func AgentByName(name string) (*Agent, error) {
	newAgent, ok := builtinAgents[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q (available: %s)", name, strings.Join(AgentNames(), ", "))
	}
	return newAgent(), nil
}

// SystemPrompt composes the persona, its instructions and the shared
// guidelines into one system message body.
func (a *Agent) SystemPrompt() string {
	return fmt.Sprintf("You are %s. %s\n%s\n\n%s", a.Name, a.Description, a.Instructions, agentGuidelines)
}

// Messages returns [system, ...context, user] for question. The context is
// shared followed by the agent's memory, trimmed to the most recent
// MaxMemory messages and halved again when it exceeds the token budget.
func (a *Agent) Messages(question string, shared ...Message) []Message {
	history := a.prepareContext(shared)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: a.SystemPrompt()})
	messages = append(messages, history...)
	messages = append(messages, UserMessage(question))
	return messages
}

func (a *Agent) prepareContext(shared []Message) []Message {
	a.mu.Lock()
	combined := make([]Message, 0, len(shared)+len(a.memory))
	combined = append(combined, shared...)
	combined = append(combined, a.memory...)
	a.mu.Unlock()

	if limit := a.memoryLimit(); len(combined) > limit {
		combined = combined[len(combined)-limit:]
	}
	if estimateTokens(combined) > maxContextTokens {
		combined = combined[len(combined)-len(combined)/2:]
	}
	return combined
}

// estimateTokens assumes four characters per token.
func estimateTokens(messages []Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Role) + len(m.Content)
	}
	return chars / 4
}

func (a *Agent) memoryLimit() int {
	if a.MaxMemory > 0 {
		return a.MaxMemory
	}
	return DefaultAgentMemory
}

// Remember appends messages to the agent's memory, dropping the oldest past
// the memory limit.
func (a *Agent) Remember(messages ...Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.memory = append(a.memory, messages...)
	if limit := a.memoryLimit(); len(a.memory) > limit {
		a.memory = append([]Message(nil), a.memory[len(a.memory)-limit:]...)
	}
}

// Memory returns a copy of the remembered messages, oldest first.
func (a *Agent) Memory() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Message(nil), a.memory...)
}

// ClearMemory forgets the conversation.
func (a *Agent) ClearMemory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory = nil
}

// Ask sends question to endpoint through c and returns the reply. The
// question and reply are remembered only when the exchange succeeds. There is
// no retry.
func (a *Agent) Ask(ctx context.Context, c *Client, endpoint Endpoint, question string, shared ...Message) (string, error) {
	resp, err := c.Chat(ctx, endpoint, a.Messages(question, shared...)...)
	if err != nil {
		return "", fmt.Errorf("%s agent: %w", a.Name, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%s agent: %w", a.Name, &StatusError{
			StatusCode: resp.StatusCode,
			Expected:   http.StatusOK,
			Body:       resp.Body,
		})
	}

	reply := resp.Content()
	if n := utf8.RuneCountInString(reply); n == 0 || n >= maxAgentReplyLength {
		return "", fmt.Errorf("%s agent: %w: %d characters", a.Name, ErrInvalidReply, n)
	}

	a.Remember(UserMessage(question), Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// AgentProbe sends question to endpoint as agent would, system prompt and
// remembered context included. Running the probe does not change the
// agent's memory.
func AgentProbe(endpoint Endpoint, agent *Agent, question string) Probe {
	return Probe{
		Name:     AgentProbeName + "-" + strings.ToLower(agent.ShortName),
		Endpoint: endpoint,
		Build: func() ([]byte, error) {
			return BuildChatBody(agent.Messages(question)...)
		},
	}
}
