package scene

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestThemeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Theme)
		wantKey string
	}{
		{"default theme", func(*Theme) {}, ""},
		{"zero default scale", func(th *Theme) { th.Default.Scale = 0 }, "default"},
		{"negative back-link scale", func(th *Theme) { th.BackLink.Scale = -1 }, "backLink"},
		{"zero active scale", func(th *Theme) { th.Active.Scale = 0 }, "active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultTheme()
			tt.mutate(&th)
			err := th.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("Validate() = %v, want validation.Errors", err)
			}
			if _, ok := errs[tt.wantKey]; !ok {
				t.Errorf("Validate() = %v, want an error for %q", err, tt.wantKey)
			}
		})
	}
}
