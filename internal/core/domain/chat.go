package domain

const (
	// MaxChatHistory is how many client-supplied turns the server keeps.
	MaxChatHistory = 10
	// PromptChatHistory is how many of those turns reach the remote model.
	PromptChatHistory = 4
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type ChatRequest struct {
	Message      string     `json:"message"`
	HasDocument  bool       `json:"has_document"`
	FileName     string     `json:"file_name,omitempty"`
	History      []ChatTurn `json:"conversation_history"`
	HandoffToken string     `json:"handoff_token,omitempty"`
}

// ChatSource names the responder that produced a reply.
type ChatSource string

const (
	ChatSourceProduct  ChatSource = "product"
	ChatSourceCategory ChatSource = "category"
	ChatSourceAdvice   ChatSource = "advice"
	ChatSourceRemote   ChatSource = "remote"
	ChatSourceApology  ChatSource = "apology"
)

type ChatReply struct {
	Response string     `json:"response"`
	Source   ChatSource `json:"source"`
	Degraded bool       `json:"degraded"`
}

// ChatContext is what responders see for one turn. Document is set when a
// handoff token was redeemed.
type ChatContext struct {
	Request  ChatRequest
	History  []ChatTurn
	Document *AnalysisReport
}

// TrimHistory returns the last limit turns of history.
func TrimHistory(history []ChatTurn, limit int) []ChatTurn {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
