package health

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CredentialSource lists the credentials currently available.
type CredentialSource interface {
	All() []string
}

// SlotSource reports whether a numbered slot variable is set.
type SlotSource interface {
	IsAvailable(n int) bool
}

// CredentialCheckerConfig configures the credential health checker.
type CredentialCheckerConfig struct {
	// Name is the checker name. Default: "credentials"
	Name string

	// MinKeys is the number of credentials below which the check is unhealthy.
	// Default: 1
	MinKeys int

	// Validate reports whether a credential is well-formed. Malformed
	// credentials degrade the check. Nil accepts every credential.
	Validate func(string) bool
}

// CredentialChecker checks that enough well-formed credentials are available.
type CredentialChecker struct {
	source CredentialSource
	config CredentialCheckerConfig
}

// NewCredentialChecker creates a credential health checker over source.
func NewCredentialChecker(source CredentialSource, config CredentialCheckerConfig) *CredentialChecker {
	if config.Name == "" {
		config.Name = "credentials"
	}
	if config.MinKeys <= 0 {
		config.MinKeys = 1
	}
	return &CredentialChecker{source: source, config: config}
}

// Name returns the configured checker name.
func (c *CredentialChecker) Name() string {
	return c.config.Name
}

// Check counts available and malformed credentials.
func (c *CredentialChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	keys := c.source.All()
	invalid := 0
	if c.config.Validate != nil {
		for _, k := range keys {
			if !c.config.Validate(k) {
				invalid++
			}
		}
	}

	details := map[string]any{
		"available":      len(keys),
		"invalid_format": invalid,
		"min_keys":       c.config.MinKeys,
	}

	if len(keys) < c.config.MinKeys {
		return Unhealthy(
			fmt.Sprintf("found %d credential(s), need at least %d", len(keys), c.config.MinKeys),
			ErrNoCredentials,
		).WithDetails(details)
	}

	if invalid > 0 {
		return Degraded(
			fmt.Sprintf("%d of %d credential(s) have an invalid format", invalid, len(keys)),
		).WithDetails(details)
	}

	return Healthy(fmt.Sprintf("%d credential(s) available", len(keys))).WithDetails(details)
}

// SlotChecker checks that specific slots hold credentials.
type SlotChecker struct {
	source   SlotSource
	required []int
}

// NewSlotChecker creates a checker requiring every slot in required.
func NewSlotChecker(source SlotSource, required []int) *SlotChecker {
	slots := make([]int, len(required))
	copy(slots, required)
	return &SlotChecker{source: source, required: slots}
}

// Name returns "required_slots".
func (c *SlotChecker) Name() string {
	return "required_slots"
}

// Check reports the required slots that are missing.
func (c *SlotChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var missing []int
	for _, n := range c.required {
		if !c.source.IsAvailable(n) {
			missing = append(missing, n)
		}
	}

	details := map[string]any{
		"required": c.required,
		"missing":  missing,
	}

	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, n := range missing {
			names[i] = strconv.Itoa(n)
		}
		return Unhealthy(
			"missing required slot(s): "+strings.Join(names, ", "),
			ErrMissingSlot,
		).WithDetails(details)
	}

	return Healthy(fmt.Sprintf("%d required slot(s) present", len(c.required))).WithDetails(details)
}

var (
	_ Checker = (*CredentialChecker)(nil)
	_ Checker = (*SlotChecker)(nil)
)
