package generator

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	"github.com/empuraan01/fenmoai-hrletter/internal/employee"
	apperrors "github.com/empuraan01/fenmoai-hrletter/internal/errors"
)

// LetterRequest carries everything the model needs to draft one offer
// letter.
type LetterRequest struct {
	Employee        employee.Employee
	Policies        employee.Policies
	PolicyContext   string
	TemplateContext string
}

// Generator drafts offer letters from assembled context.
type Generator interface {
	GenerateLetter(ctx context.Context, req LetterRequest) (string, error)
	Ready() bool
}

// NoopGenerator is the placeholder used when no provider is configured.
type NoopGenerator struct{}

func (n *NoopGenerator) GenerateLetter(ctx context.Context, req LetterRequest) (string, error) {
	return "", apperrors.NewSystemError(apperrors.ErrCodeExternalService, "letter generator not configured")
}

func (n *NoopGenerator) Ready() bool {
	return false
}

// OpenAIGenerator drafts letters through the OpenAI chat completion API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIGenerator creates a generator, falling back to the noop
// implementation when no API key is configured.
func NewOpenAIGenerator(apiKey, model string, maxTokens int, temperature float64) Generator {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopGenerator{}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}
}

func (g *OpenAIGenerator) GenerateLetter(ctx context.Context, req LetterRequest) (string, error) {
	if g.client == nil {
		return "", apperrors.NewSystemError(apperrors.ErrCodeExternalService, "openai client not initialized")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert HR professional generating personalized job offer letters.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildLetterPrompt(req),
			},
		},
	})
	if err != nil {
		return "", apperrors.NewExternalError(apperrors.ErrCodeExternalService, "letter generation failed").WithCause(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewExternalError(apperrors.ErrCodeExternalService, "letter generation returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Ready() bool {
	return g.client != nil
}

// BuildLetterPrompt renders the offer letter prompt from employee data
// and retrieved policy context.
func BuildLetterPrompt(req LetterRequest) string {
	emp := req.Employee

	policyContext := req.PolicyContext
	if strings.TrimSpace(policyContext) == "" {
		policyContext = "Policy information not available"
	}
	templateContext := req.TemplateContext
	if strings.TrimSpace(templateContext) == "" {
		templateContext = "Use standard business offer letter structure"
	}

	var flags []string
	if req.Policies.WFHPolicy {
		flags = append(flags, "eligible for work-from-home arrangements")
	}
	if req.Policies.FlexibleHours {
		flags = append(flags, "eligible for flexible working hours")
	}
	applicable := "standard leave and travel policies apply"
	if len(flags) > 0 {
		applicable += "; " + strings.Join(flags, "; ")
	}

	return fmt.Sprintf(`**EMPLOYEE INFORMATION:**
- Name: %s
- Department: %s
- Location: %s
- Salary Band: %s (%s)
- Base Salary: Rs. %.2f per annum
- Joining Date: %s
- Employee ID: %s

**COMPENSATION & POLICIES:**
- Base Salary: Rs. %.2f per annum
- Applicable policies: %s

**HR POLICIES CONTEXT:**
%s

**TEMPLATE REFERENCE:**
%s

**INSTRUCTIONS:**
1. Create a professional, personalized offer letter
2. Include all relevant compensation details
3. Reference specific HR policies that apply to this employee's salary band
4. Use formal business letter format with proper date, addresses, and signatures
5. Ensure all financial figures are accurate and clearly stated
6. Include relevant policy excerpts for leave, travel, and work arrangements
7. Make it warm yet professional in tone
8. If policy information is not available, focus on the base salary and general company policies

**OUTPUT FORMAT:**
Generate a complete offer letter in proper business format, including company
letterhead placeholder, date and addresses, formal salutation, position details,
compensation breakdown, policy references, terms and conditions, and signature
blocks.

Please generate the complete offer letter now:`,
		emp.Name, emp.Department, emp.Location,
		emp.Band, bandLevelLabel(emp.Band),
		emp.BaseSalary, emp.JoiningDate, emp.EmployeeID,
		emp.BaseSalary, applicable,
		policyContext, templateContext)
}

func bandLevelLabel(b band.Band) string {
	if b.Valid() {
		return b.Label()
	}
	return "Standard"
}
