package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrNoChoices      = errors.New("no choices in completion")
	ErrNoToolCall     = errors.New("no tool call in completion")
	ErrUnexpectedCall = errors.New("unexpected tool call")
)

const systemPrompt = "You are an expert educator who writes accurate multiple choice quizzes " +
	"and concise, encouraging feedback. Always answer through the provided tool."

// OpenAIConfig configures the chat-completions backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIGenerator implements Generator with forced tool calls so every
// answer arrives as JSON matching a declared schema.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func NewOpenAIGenerator(cfg OpenAIConfig, log zerolog.Logger) *OpenAIGenerator {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	m := cfg.Model
	if m == "" {
		m = openai.GPT4o
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(oc),
		model:  m,
		log:    log.With().Str("component", "openai_generator").Logger(),
	}
}

func (g *OpenAIGenerator) VerifySubject(ctx context.Context, subject string) (model.SubjectVerdict, error) {
	var v model.SubjectVerdict
	err := g.callTool(ctx, subjectPrompt(subject), subjectVerdictTool, &v)
	return v, err
}

func (g *OpenAIGenerator) VerifySubSubject(ctx context.Context, subject, subSubject string) (model.SubSubjectVerdict, error) {
	var v model.SubSubjectVerdict
	err := g.callTool(ctx, subSubjectPrompt(subject, subSubject), subSubjectVerdictTool, &v)
	return v, err
}

func (g *OpenAIGenerator) GenerateQuestions(ctx context.Context, req model.GenerateQuizRequest) ([]model.Question, error) {
	var args struct {
		Questions []model.Question `json:"questions"`
	}
	if err := g.callTool(ctx, quizPrompt(req), questionsTool, &args); err != nil {
		return nil, err
	}

	g.log.Debug().
		Str("subject", req.Subject).
		Str("level", string(req.Level)).
		Int("questions", len(args.Questions)).
		Msg("Questions generated")
	return args.Questions, nil
}

func (g *OpenAIGenerator) Explain(ctx context.Context, reqs []scoring.ExplanationRequest) (map[int]string, error) {
	if len(reqs) == 0 {
		return map[int]string{}, nil
	}

	var args struct {
		Explanations []struct {
			QuestionNum int    `json:"questionNum"`
			Explanation string `json:"explanation"`
		} `json:"explanations"`
	}
	if err := g.callTool(ctx, explainPrompt(reqs), explanationsTool, &args); err != nil {
		return nil, err
	}

	out := make(map[int]string, len(args.Explanations))
	for _, e := range args.Explanations {
		out[e.QuestionNum] = e.Explanation
	}
	return out, nil
}

func (g *OpenAIGenerator) Reflect(ctx context.Context, facts scoring.ReflectionFacts) (string, error) {
	var args struct {
		Reflection string `json:"reflection"`
	}
	if err := g.callTool(ctx, reflectPrompt(facts), reflectionTool, &args); err != nil {
		return "", err
	}
	return args.Reflection, nil
}

// callTool forces the model to answer through tool and decodes the
// arguments into out.
func (g *OpenAIGenerator) callTool(ctx context.Context, prompt string, tool openai.FunctionDefinition, out interface{}) error {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []openai.Tool{{Type: openai.ToolTypeFunction, Function: &tool}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: tool.Name},
		},
	})
	if err != nil {
		return fmt.Errorf("%s: chat completion: %w", tool.Name, err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%s: %w", tool.Name, ErrNoChoices)
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return fmt.Errorf("%s: %w", tool.Name, ErrNoToolCall)
	}
	if calls[0].Function.Name != tool.Name {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCall, calls[0].Function.Name, tool.Name)
	}

	if err := json.Unmarshal([]byte(calls[0].Function.Arguments), out); err != nil {
		return fmt.Errorf("%s: decode arguments: %w", tool.Name, err)
	}
	return nil
}
