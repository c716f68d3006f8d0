// Package rules loads optional safety-rule overrides from a YAML file.
// The file lets the denylist be extended (or replaced) and the filter
// thresholds tuned without rebuilding the bot.
package rules

import (
	"fmt"
	"os"

	"github.com/nilayanand/fluxbot/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the YAML structure of rules.yaml.
type File struct {
	// Denylist entries appended to the built-in phrase list.
	Denylist []string `yaml:"denylist"`

	// ReplaceDenylist, when true, replaces the built-in list entirely
	// instead of appending. Use with care.
	ReplaceDenylist bool `yaml:"replace_denylist"`

	// Threshold overrides; zero values mean "keep the default".
	MinLettersForCaseCheck int     `yaml:"min_letters_for_case_check"`
	MaxUppercaseRatio      float64 `yaml:"max_uppercase_ratio"`
	MaxSpecialCharRatio    float64 `yaml:"max_special_char_ratio"`
	MaxPromoEmoji          int     `yaml:"max_promo_emoji"`
	MinContentLength       int     `yaml:"min_content_length"`
	MaxCharRun             int     `yaml:"max_char_run"`
}

// Apply loads the rules file at path, if present, and applies it onto the
// given filter options. A missing file is not an error.
func Apply(path string, opts *domain.FilterOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read rules file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse rules file: %w", err)
	}

	if f.ReplaceDenylist {
		opts.Denylist = f.Denylist
	} else {
		opts.Denylist = append(opts.Denylist, f.Denylist...)
	}

	if f.MinLettersForCaseCheck > 0 {
		opts.MinLettersForCaseCheck = f.MinLettersForCaseCheck
	}
	if f.MaxUppercaseRatio > 0 {
		opts.MaxUppercaseRatio = f.MaxUppercaseRatio
	}
	if f.MaxSpecialCharRatio > 0 {
		opts.MaxSpecialCharRatio = f.MaxSpecialCharRatio
	}
	if f.MaxPromoEmoji > 0 {
		opts.MaxPromoEmoji = f.MaxPromoEmoji
	}
	if f.MinContentLength > 0 {
		opts.MinContentLength = f.MinContentLength
	}
	if f.MaxCharRun > 0 {
		opts.MaxCharRun = f.MaxCharRun
	}

	return nil
}
