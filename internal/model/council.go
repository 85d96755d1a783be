package model

// Agent is one fixed seat of the five-member council. Opinions carry no
// identity of their own; they are bound to seats by position.
type Agent struct {
	Emoji string
	Color string
	Name  string
}

// Council lists the seats in the order the backend emits opinions.
var Council = [5]Agent{
	{Emoji: "🦅", Color: "#ff4444", Name: "Macro Hawk"},
	{Emoji: "🔬", Color: "#44aaff", Name: "Micro Forensic"},
	{Emoji: "💧", Color: "#44ff88", Name: "Flow Detective"},
	{Emoji: "📊", Color: "#ffbb44", Name: "Tech Interpreter"},
	{Emoji: "🤔", Color: "#8844ff", Name: "Skeptic"},
}

// Seated pairs the first len(Council) opinions with their seats. Extra
// opinions are dropped.
func Seated(opinions []string) []SeatedOpinion {
	n := len(opinions)
	if n > len(Council) {
		n = len(Council)
	}
	out := make([]SeatedOpinion, n)
	for i := 0; i < n; i++ {
		out[i] = SeatedOpinion{Agent: Council[i], Text: opinions[i], Index: i}
	}
	return out
}

// SeatedOpinion is an opinion bound to its council seat.
type SeatedOpinion struct {
	Agent
	Text  string
	Index int
}
