package ai

// Mode is one entry of the assistant's model picker.
type Mode struct {
	Key   string
	Label string
	Model string
}

// Modes lists the assistant modes in display order.
var Modes = []Mode{
	{Key: "summarize", Label: "Summarize text", Model: "gemma:2b"},
	{Key: "answer", Label: "Answer questions", Model: "mistral"},
	{Key: "explain", Label: "Explain step by step", Model: "llama3:8b"},
	{Key: "quick", Label: "Quick and light answers", Model: "phi3:mini"},
}

// LookupMode returns the mode with the given key.
func LookupMode(key string) (Mode, bool) {
	for _, m := range Modes {
		if m.Key == key {
			return m, true
		}
	}
	return Mode{}, false
}
