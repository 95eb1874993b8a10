package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yoockh/mentorloop/internal/lifecycle"
)

type badgeFile struct {
	Badges []struct {
		Threshold int    `yaml:"threshold"`
		Title     string `yaml:"title"`
	} `yaml:"badges"`
}

// LoadBadgeRules reads milestone badges from a YAML file:
//
//	badges:
//	  - threshold: 1
//	    title: Starter
//
// Rules must be listed in strictly ascending threshold order because a rule's
// position is its badge id.
func LoadBadgeRules(path string) ([]lifecycle.BadgeRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBadgeRules(raw)
}

func ParseBadgeRules(raw []byte) ([]lifecycle.BadgeRule, error) {
	var f badgeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse badge rules: %w", err)
	}
	if len(f.Badges) == 0 {
		return nil, fmt.Errorf("no badges defined")
	}

	seen := map[string]bool{}
	out := make([]lifecycle.BadgeRule, 0, len(f.Badges))
	prev := 0
	for i, b := range f.Badges {
		title := strings.TrimSpace(b.Title)
		switch {
		case title == "":
			return nil, fmt.Errorf("badge %d: title is required", i+1)
		case b.Threshold <= prev:
			return nil, fmt.Errorf("badge %q: threshold must be greater than %d", title, prev)
		case seen[strings.ToLower(title)]:
			return nil, fmt.Errorf("badge %q: duplicate title", title)
		}
		seen[strings.ToLower(title)] = true
		prev = b.Threshold
		out = append(out, lifecycle.BadgeRule{Threshold: b.Threshold, Title: title})
	}
	return out, nil
}
