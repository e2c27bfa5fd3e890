package contract

type AgentRole string

const (
	RoleVerifier          AgentRole = "verifier"
	RoleFinancialAnalyst  AgentRole = "financial_analyst"
	RoleInvestmentAdvisor AgentRole = "investment_advisor"
	RoleRiskAssessor      AgentRole = "risk_assessor"
)

type TaskName string

const (
	TaskAnalyzeFinancialDocument TaskName = "analyze_financial_document"
	TaskVerification             TaskName = "verification"
	TaskInvestmentAnalysis       TaskName = "investment_analysis"
	TaskRiskAssessment           TaskName = "risk_assessment"
)

// AgentDefinition is the immutable configuration of one crew member.
type AgentDefinition struct {
	Role            AgentRole `json:"role"`
	Title           string    `json:"title"`
	Goal            string    `json:"goal"` // may reference {query}
	Backstory       string    `json:"backstory"`
	Tools           []string  `json:"tools"`
	MaxIter         int       `json:"max_iter"`
	MaxRPM          int       `json:"max_rpm"`
	AllowDelegation bool      `json:"allow_delegation"`
}

// TaskDefinition is a prompt template bound to one agent and a fixed tool list.
type TaskDefinition struct {
	Name           TaskName  `json:"name"`
	Description    string    `json:"description"` // may reference {query}
	ExpectedOutput string    `json:"expected_output"`
	Agent          AgentRole `json:"agent"`
	Tools          []string  `json:"tools"`
}

type TaskOutput struct {
	Task   TaskName  `json:"task"`
	Agent  AgentRole `json:"agent"`
	Output string    `json:"output"`
}

// AgentRequest is one task handed to an agent. Prompt is already rendered.
type AgentRequest struct {
	Task           TaskName
	Query          string
	DocumentPath   string
	Prompt         string
	ExpectedOutput string
	Context        []TaskOutput
	Tools          []Tool
}
