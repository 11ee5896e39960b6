package ai

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
)

// estimateTokens counts prompt tokens with tiktoken. Unknown models fall back
// to cl100k_base, which is close enough for metering.
func estimateTokens(model string, messages []adapter.Message) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	total := 0
	for _, m := range messages {
		// +4 per message for the role/format scaffolding.
		total += len(enc.Encode(m.Content, nil, nil)) + 4
	}
	return total, nil
}
