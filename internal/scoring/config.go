package scoring

// Config is the immutable scoring profile. Build it once and hand it to New.
type Config struct {
	Blacklist          []string
	Required           []string
	Bonus              []string
	Negative           []string
	ExperiencePatterns []string

	RequiredWeight   int
	BonusWeight      int
	ExperienceWeight int
	RemoteWeight     int
	NegativePenalty  int

	MinScore int
}

// Weights and threshold used by DefaultConfig.
const (
	DefaultRequiredWeight   = 8
	DefaultBonusWeight      = 4
	DefaultExperienceWeight = 10
	DefaultRemoteWeight     = 5
	DefaultNegativePenalty  = -50
	DefaultMinScore         = 30
)

// DefaultConfig returns the backend/AI engineering profile.
func DefaultConfig() Config {
	return Config{
		Required: []string{
			"backend", "node", "nodejs", "typescript", "aws", "golang", "go",
			"graphql", "devops", "platform", "api",
			"langchain", "agentic", "llm", "llms", "ai developer", "ai engineer",
			"automated workflows", "agent workflows", "workflow automation",
		},
		// "remote" is scored by RemoteWeight and stays out of this list.
		Bonus: []string{
			"microservices", "saas", "startup", "series a", "series b",
			"mongodb", "postgresql", "redis", "docker", "kubernetes", "lambda",
			"openai", "anthropic", "claude", "gpt", "gemini", "langgraph",
			"autonomous agents", "multi-agent", "rag", "vector database",
			"prompt engineering", "fine-tuning", "model deployment",
		},
		Negative: []string{
			"frontend", "react developer", "vue developer", "angular developer",
			"ios", "ios developer", "android", "android developer",
			"qa engineer", "quality assurance", "test engineer",
			"designer", "ui designer", "ux designer", "graphic designer",
			"intern", "internship",
			"manager", "engineering manager", "product manager",
			"sales", "marketing", "recruiter", "hr",
			"data analyst", "business analyst",
		},
		ExperiencePatterns: []string{
			"2-4 years", "2+ years", "3+ years", "4+ years",
			"mid-level", "mid level", "senior", "staff",
		},
		RequiredWeight:   DefaultRequiredWeight,
		BonusWeight:      DefaultBonusWeight,
		ExperienceWeight: DefaultExperienceWeight,
		RemoteWeight:     DefaultRemoteWeight,
		NegativePenalty:  DefaultNegativePenalty,
		MinScore:         DefaultMinScore,
	}
}

func (c Config) clone() Config {
	c.Blacklist = append([]string(nil), c.Blacklist...)
	c.Required = append([]string(nil), c.Required...)
	c.Bonus = append([]string(nil), c.Bonus...)
	c.Negative = append([]string(nil), c.Negative...)
	c.ExperiencePatterns = append([]string(nil), c.ExperiencePatterns...)
	return c
}
