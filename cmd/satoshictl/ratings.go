package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
)

// ratingFlags are shared by every command that reads a ScoreMap.
type ratingFlags struct {
	code string
}

func (f *ratingFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "start from the ratings of a score code or share URL")
}

// ratings builds a ScoreMap from --code and category=value arguments. Pairs
// override the code.
func (f *ratingFlags) ratings(args []string) (category.ScoreMap, error) {
	m := category.ScoreMap{}
	if code := strings.TrimSpace(f.code); code != "" {
		// Padded base64 codes contain '=', so the bare code is tried before the URL forms.
		if m = share.DecodeScores(code); len(m) == 0 {
			m = share.ReadScores(code)
		}
		if len(m) == 0 {
			return nil, fmt.Errorf("score code %q holds no ratings", code)
		}
	}
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("rating %q: want category=value", arg)
		}
		c, err := category.Parse(name)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("rating %q: %w", arg, err)
		}
		if err := category.CheckScore(c, v); err != nil {
			return nil, err
		}
		m[c] = v
	}
	return m, nil
}
