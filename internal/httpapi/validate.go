package httpapi

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"jobcore/internal/assets"
)

// newValidator builds a validator/v10 instance with a "channel" tag that
// checks a string against the Asset Coordinator's closed channel set. Gin's
// built-in binding validator handles struct-tag shape checks (required,
// oneof, min); this one enforces the domain-specific channel allow-list that
// a generic binding tag cannot express.
func newValidator() *validator.Validate {
	v := validator.New()
	allowed := map[string]bool{}
	for _, channel := range assets.SupportedChannels() {
		allowed[channel] = true
	}
	_ = v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	})
	return v
}

// validateChannelIDs checks every entry in ids against the channel allow-list,
// returning a single combined error naming the first unknown channel.
func validateChannelIDs(v *validator.Validate, ids []string) error {
	for _, id := range ids {
		if err := v.Var(id, "channel"); err != nil {
			return fmt.Errorf("unknown channel %q", id)
		}
	}
	return nil
}
