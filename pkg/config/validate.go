package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and cross-field references.
func Validate(c *Config) error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, ok := c.Mount(c.Login.RemediationMount); !ok {
		return fmt.Errorf("login.remediation_mount %q is not a configured mount", c.Login.RemediationMount)
	}
	return nil
}
