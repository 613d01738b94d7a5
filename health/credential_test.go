package health

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type staticCredentials []string

func (s staticCredentials) All() []string { return s }

type staticSlots map[int]bool

func (s staticSlots) IsAvailable(n int) bool { return s[n] }

func hasPrefixAQ(v string) bool { return strings.HasPrefix(v, "AQ.") }

func TestNewCredentialChecker_Defaults(t *testing.T) {
	checker := NewCredentialChecker(staticCredentials{}, CredentialCheckerConfig{})

	if checker.Name() != "credentials" {
		t.Errorf("Name() = %v, want 'credentials'", checker.Name())
	}
	if checker.config.MinKeys != 1 {
		t.Errorf("MinKeys = %d, want 1", checker.config.MinKeys)
	}
}

func TestCredentialChecker_Check(t *testing.T) {
	tests := []struct {
		name      string
		keys      staticCredentials
		config    CredentialCheckerConfig
		want      Status
		wantErr   error
		available int
		invalid   int
	}{
		{
			name:    "none available",
			keys:    nil,
			want:    StatusUnhealthy,
			wantErr: ErrNoCredentials,
		},
		{
			name:      "below minimum",
			keys:      staticCredentials{"AQ.one"},
			config:    CredentialCheckerConfig{MinKeys: 2},
			want:      StatusUnhealthy,
			wantErr:   ErrNoCredentials,
			available: 1,
		},
		{
			name:      "all valid",
			keys:      staticCredentials{"AQ.one", "AQ.two"},
			config:    CredentialCheckerConfig{Validate: hasPrefixAQ},
			want:      StatusHealthy,
			available: 2,
		},
		{
			name:      "one malformed",
			keys:      staticCredentials{"AQ.one", "bogus"},
			config:    CredentialCheckerConfig{Validate: hasPrefixAQ},
			want:      StatusDegraded,
			available: 2,
			invalid:   1,
		},
		{
			name:      "no validator accepts everything",
			keys:      staticCredentials{"bogus"},
			want:      StatusHealthy,
			available: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewCredentialChecker(tt.keys, tt.config)
			result := checker.Check(context.Background())

			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", result.Status, tt.want, result.Message)
			}
			if !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
			}
			if got := result.Details["available"]; got != tt.available {
				t.Errorf("Details[available] = %v, want %d", got, tt.available)
			}
			if got := result.Details["invalid_format"]; got != tt.invalid {
				t.Errorf("Details[invalid_format] = %v, want %d", got, tt.invalid)
			}
		})
	}
}

func TestCredentialChecker_CheckCancelled(t *testing.T) {
	checker := NewCredentialChecker(staticCredentials{"AQ.one"}, CredentialCheckerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checker.Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if !errors.Is(result.Error, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled", result.Error)
	}
}

func TestSlotChecker_Check(t *testing.T) {
	source := staticSlots{1: true, 3: true}

	t.Run("all present", func(t *testing.T) {
		checker := NewSlotChecker(source, []int{1, 3})
		result := checker.Check(context.Background())

		if checker.Name() != "required_slots" {
			t.Errorf("Name() = %v, want 'required_slots'", checker.Name())
		}
		if result.Status != StatusHealthy {
			t.Errorf("Status = %v, want StatusHealthy", result.Status)
		}
	})

	t.Run("some missing", func(t *testing.T) {
		checker := NewSlotChecker(source, []int{1, 2, 4})
		result := checker.Check(context.Background())

		if result.Status != StatusUnhealthy {
			t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
		}
		if !errors.Is(result.Error, ErrMissingSlot) {
			t.Errorf("Error = %v, want ErrMissingSlot", result.Error)
		}
		if result.Message != "missing required slot(s): 2, 4" {
			t.Errorf("Message = %q", result.Message)
		}
	})

	t.Run("nothing required", func(t *testing.T) {
		checker := NewSlotChecker(source, nil)
		if result := checker.Check(context.Background()); result.Status != StatusHealthy {
			t.Errorf("Status = %v, want StatusHealthy", result.Status)
		}
	})
}

func TestSlotChecker_CopiesRequired(t *testing.T) {
	required := []int{1}
	checker := NewSlotChecker(staticSlots{1: true}, required)
	required[0] = 9

	if result := checker.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy after caller mutation", result.Status)
	}
}
