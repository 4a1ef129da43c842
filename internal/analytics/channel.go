package analytics

import (
	"strings"

	"go-sales-agent/internal/config"
	"go-sales-agent/internal/models"
)

const InStore = "In-Store"

// ChannelClassifier guesses a sale's origin from the attached customer's name.
// Delivery platforms show up as named customer accounts in the POS; there is no
// authoritative channel field, so this is a heuristic.
type ChannelClassifier struct {
	rules []config.PlatformRule
}

func NewChannelClassifier(rules []config.PlatformRule) *ChannelClassifier {
	return &ChannelClassifier{rules: rules}
}

// Classify returns the first matching platform's channel, or InStore.
func (c *ChannelClassifier) Classify(cust *models.Customer) string {
	if cust == nil {
		return InStore
	}
	name := strings.ToLower(strings.TrimSpace(cust.FirstName + " " + cust.LastName))
	if name == "" {
		return InStore
	}
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(name, pattern) {
				return rule.Channel
			}
		}
	}
	return InStore
}
