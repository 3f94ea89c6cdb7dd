// Package tokencount estimates prompt token counts so batched evaluation
// prompts can be capped before dispatch.
//
// It uses tiktoken-go with the cl100k_base encoding, which is a close enough
// approximation for the Gemini family for budgeting purposes.
package tokencount

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding("cl100k_base")
	})
	return enc, encErr
}

// Estimate returns the approximate token count of text. When the encoding
// cannot be loaded it falls back to the rough 4-chars-per-token rule.
func Estimate(text string) (int, error) {
	e, err := encoding()
	if err != nil {
		return len(text) / 4, nil
	}
	return len(e.Encode(text, nil, nil)), nil
}
