//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package openaichat runs evaluation turns against an OpenAI-compatible
// chat completion endpoint.
package openaichat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-agenteval-go/log"
	"trpc.group/trpc-go/trpc-agenteval-go/runner"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// Verify that Runner implements the runner.Runner interface.
var _ runner.Runner = (*Runner)(nil)

// defaultMaxToolRounds bounds the number of tool call rounds within a
// single turn before the turn is abandoned.
const defaultMaxToolRounds = 10

// DefaultInstruction is the system prompt used when no instruction is
// configured. It describes the assistant persona the bundled calculation
// tools were built for.
const DefaultInstruction = `You are a helpful financial and administrative assistant with access to specialized calculation tools.

IMPORTANT: You MUST use the available tools to perform calculations. Do not do manual calculations.

Available tools:
- calc_penalty: Calculate late payment penalties with interest and caps
- calc_tax: Progressive tax calculations with surcharge
- check_voting: Validate voting results and quorum requirements
- distribute_waterfall: Calculate financial waterfall distributions
- check_housing_grant: Check housing assistance eligibility

When answering questions:
1. ALWAYS use the appropriate tool for calculations
2. Extract the required parameters from the user's question
3. Call the tool with the correct parameters
4. Present the tool's results clearly
5. Include any warnings or special conditions from the tool

Do not perform manual calculations - always use the tools provided.`

// Tool declares a function the model may call during a turn.
type Tool struct {
	// Name is the function name exposed to the model.
	Name string
	// Description tells the model when the function applies.
	Description string
	// Parameters is the JSON schema describing the function arguments.
	Parameters map[string]any
	// Handler executes a call and returns a result that is serialized
	// into the tool response message. A nil handler reports the tool as
	// unavailable to the model instead of failing the turn.
	Handler func(ctx context.Context, args map[string]any) (any, error)
}

// Runner drives an agent turn through chat completions: it sends the
// session history plus the new user message, executes requested tool
// calls, and loops until the model produces a plain response. Tool call
// rounds are recorded as steps of the structured turn output.
type Runner struct {
	client        openai.Client
	model         string
	apiKey        string
	baseURL       string
	instruction   string
	temperature   *float64
	maxTokens     *int
	maxToolRounds int
	tools         []*Tool
	toolsByName   map[string]*Tool
	toolParams    []openai.ChatCompletionToolParam
	requestOpts   []option.RequestOption

	mu       sync.Mutex
	sessions map[string][]openai.ChatCompletionMessageParamUnion
}

// Option represents a functional option for configuring the Runner.
type Option func(*Runner)

// WithAPIKey sets the API key. If not provided, the OPENAI_API_KEY
// environment variable is used.
func WithAPIKey(apiKey string) Option {
	return func(r *Runner) {
		r.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(r *Runner) {
		r.baseURL = baseURL
	}
}

// WithInstruction sets the system prompt prepended to every session.
// An empty instruction disables the system message.
func WithInstruction(instruction string) Option {
	return func(r *Runner) {
		r.instruction = instruction
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(r *Runner) {
		r.temperature = &temperature
	}
}

// WithMaxTokens caps the number of completion tokens per request.
func WithMaxTokens(maxTokens int) Option {
	return func(r *Runner) {
		r.maxTokens = &maxTokens
	}
}

// WithMaxToolRounds sets the maximum number of tool call rounds per
// turn. Values below 1 keep the default.
func WithMaxToolRounds(rounds int) Option {
	return func(r *Runner) {
		if rounds < 1 {
			return
		}
		r.maxToolRounds = rounds
	}
}

// WithTools registers the tools exposed to the model.
func WithTools(tools ...*Tool) Option {
	return func(r *Runner) {
		r.tools = append(r.tools, tools...)
	}
}

// WithRequestOptions sets additional options for each chat completion
// request.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(r *Runner) {
		r.requestOpts = append(r.requestOpts, opts...)
	}
}

// New creates a chat completion runner for the given model name.
func New(model string, opts ...Option) *Runner {
	r := &Runner{
		model:         model,
		instruction:   DefaultInstruction,
		maxToolRounds: defaultMaxToolRounds,
		sessions:      make(map[string][]openai.ChatCompletionMessageParamUnion),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.toolsByName = make(map[string]*Tool, len(r.tools))
	for _, tool := range r.tools {
		if tool == nil || tool.Name == "" {
			continue
		}
		r.toolsByName[tool.Name] = tool
	}
	r.toolParams = convertTools(r.tools)

	var clientOpts []option.RequestOption
	if r.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(r.apiKey))
	}
	if r.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(r.baseURL))
	}
	r.client = openai.NewClient(clientOpts...)
	return r
}

// Run executes a single conversational turn within the given session.
// The model may request several tool call rounds before answering; each
// round becomes a step in the structured turn output. Transport errors
// are returned as-is so callers can fail the affected case.
func (r *Runner) Run(ctx context.Context, userID, sessionID, input string) (*transcript.TurnOutput, error) {
	if sessionID == "" {
		return nil, errors.New("session id is empty")
	}
	if input == "" {
		return nil, errors.New("input is empty")
	}

	messages := append(r.sessionMessages(sessionID), userMessage(input))
	structured := &transcript.StructuredTurn{}
	for round := 0; round < r.maxToolRounds; round++ {
		completion, err := r.client.Chat.Completions.New(ctx, r.buildChatRequest(messages), r.requestOpts...)
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return nil, errors.New("chat completion returned no choices")
		}
		message := completion.Choices[0].Message

		if len(message.ToolCalls) == 0 {
			structured.OutputContent = message.Content
			messages = append(messages, assistantTextMessage(message.Content))
			r.storeSession(sessionID, messages)
			return &transcript.TurnOutput{Structured: structured}, nil
		}

		// Record the round before executing it so the step order matches
		// the request order.
		assistant := &openai.ChatCompletionAssistantMessageParam{}
		if message.Content != "" {
			assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: openai.String(message.Content),
			}
		}
		for _, call := range message.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})

		step := &transcript.Step{Content: message.Content}
		for _, call := range message.ToolCalls {
			args := decodeArguments(ctx, call.Function.Name, call.Function.Arguments)
			step.ToolCalls = append(step.ToolCalls, &transcript.ToolCall{
				Name:      call.Function.Name,
				Arguments: args,
			})
			messages = append(messages, toolResultMessage(call.ID, r.callTool(ctx, call.Function.Name, args)))
		}
		structured.Steps = append(structured.Steps, step)
	}
	return nil, fmt.Errorf("no final response after %d tool call rounds", r.maxToolRounds)
}

// sessionMessages returns a copy of the session history, seeding new
// sessions with the system instruction.
func (r *Runner) sessionMessages(sessionID string) []openai.ChatCompletionMessageParamUnion {
	r.mu.Lock()
	defer r.mu.Unlock()
	history, ok := r.sessions[sessionID]
	if !ok && r.instruction != "" {
		history = []openai.ChatCompletionMessageParamUnion{systemMessage(r.instruction)}
	}
	return append([]openai.ChatCompletionMessageParamUnion(nil), history...)
}

// storeSession persists the message history for follow-up turns.
func (r *Runner) storeSession(sessionID string, messages []openai.ChatCompletionMessageParamUnion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = messages
}

// buildChatRequest converts the message history into chat completion
// parameters.
func (r *Runner) buildChatRequest(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(r.model),
		Messages: messages,
		Tools:    r.toolParams,
	}
	if r.temperature != nil {
		chatRequest.Temperature = openai.Float(*r.temperature)
	}
	if r.maxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*r.maxTokens))
	}
	return chatRequest
}

// callTool executes the named tool and serializes its result for the
// tool response message. Tool failures are reported back to the model as
// text so the turn can still reach a final response.
func (r *Runner) callTool(ctx context.Context, name string, args map[string]any) string {
	tool, ok := r.toolsByName[name]
	if !ok || tool.Handler == nil {
		log.WarnfContext(ctx, "tool %s is not available", name)
		return fmt.Sprintf("Error: tool %s is not available", name)
	}
	result, err := tool.Handler(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return string(payload)
}

// convertTools converts tool declarations to OpenAI's format.
func convertTools(tools []*Tool) []openai.ChatCompletionToolParam {
	var result []openai.ChatCompletionToolParam
	for _, tool := range tools {
		if tool == nil || tool.Name == "" {
			continue
		}
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  shared.FunctionParameters(tool.Parameters),
			},
		})
	}
	return result
}

// decodeArguments parses a tool call argument payload. Malformed
// payloads yield nil arguments rather than failing the turn.
func decodeArguments(ctx context.Context, name, raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		log.WarnfContext(ctx, "decode arguments for tool call %s: %v", name, err)
		return nil
	}
	return args
}

func systemMessage(text string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfSystem: &openai.ChatCompletionSystemMessageParam{
			Content: openai.ChatCompletionSystemMessageParamContentUnion{
				OfString: openai.String(text),
			},
		},
	}
}

func userMessage(text string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(text),
			},
		},
	}
}

func assistantTextMessage(text string) openai.ChatCompletionMessageParamUnion {
	assistant := &openai.ChatCompletionAssistantMessageParam{}
	if text != "" {
		assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(text),
		}
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: assistant}
}

func toolResultMessage(callID, content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfTool: &openai.ChatCompletionToolMessageParam{
			Content: openai.ChatCompletionToolMessageParamContentUnion{
				OfString: openai.String(content),
			},
			ToolCallID: callID,
		},
	}
}
