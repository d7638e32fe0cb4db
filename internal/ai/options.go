package ai

import "github.com/navyaanair/M-A-lead-generation-tool/internal/model"

// BatchOptions is the generation preset for multi-company prompts.
func BatchOptions() model.GenerateOptions {
	return model.GenerateOptions{
		Temperature:   0.5,
		TopP:          0.8,
		MaxTokens:     2000,
		NumPredict:    2000,
		RepeatPenalty: 1.1,
		Stop:          []string{"\n\n---", "END_ANALYSIS"},
	}
}

// SingleOptions is the tighter, lower-randomness preset for one-company prompts.
func SingleOptions() model.GenerateOptions {
	return model.GenerateOptions{
		Temperature:   0.3,
		TopP:          0.7,
		MaxTokens:     500,
		NumPredict:    500,
		RepeatPenalty: 1.1,
	}
}
