package scene

import validation "github.com/go-ozzo/ozzo-validation/v4"

// Tier is a highlight level. Higher tiers take precedence.
type Tier int

const (
	TierDefault Tier = iota
	TierBackLink
	TierForwardLink
	TierHomePath
	TierActive
)

func (t Tier) String() string {
	switch t {
	case TierBackLink:
		return "back-link"
	case TierForwardLink:
		return "forward-link"
	case TierHomePath:
		return "home-path"
	case TierActive:
		return "active"
	default:
		return "default"
	}
}

// Treatment is the visual treatment of one tier.
type Treatment struct {
	Tint         uint32  `yaml:"tint" toml:"tint" json:"tint"`
	ZIndex       int     `yaml:"z_index" toml:"z_index" json:"zIndex"`
	Scale        float64 `yaml:"scale" toml:"scale" json:"scale"`
	LabelVisible bool    `yaml:"label_visible" toml:"label_visible" json:"labelVisible"`
}

// Theme maps every tier to a treatment.
type Theme struct {
	Default     Treatment `yaml:"default" toml:"default" json:"default"`
	BackLink    Treatment `yaml:"back_link" toml:"back_link" json:"backLink"`
	ForwardLink Treatment `yaml:"forward_link" toml:"forward_link" json:"forwardLink"`
	HomePath    Treatment `yaml:"home_path" toml:"home_path" json:"homePath"`
	Active      Treatment `yaml:"active" toml:"active" json:"active"`
}

// DefaultTheme returns the built-in treatments: dim grey by default, blues
// for neighbours, amber for the home path, white for the active path.
func DefaultTheme() Theme {
	return Theme{
		Default:     Treatment{Tint: 0x8b8685, ZIndex: 0, Scale: 1},
		BackLink:    Treatment{Tint: 0x5a7fa8, ZIndex: 1, Scale: 1.2, LabelVisible: true},
		ForwardLink: Treatment{Tint: 0x8fc1f0, ZIndex: 2, Scale: 1.2, LabelVisible: true},
		HomePath:    Treatment{Tint: 0xf0c070, ZIndex: 3, Scale: 1.5, LabelVisible: true},
		Active:      Treatment{Tint: 0xffffff, ZIndex: 4, Scale: 2, LabelVisible: true},
	}
}

// For returns the treatment of tier.
func (th Theme) For(t Tier) Treatment {
	switch t {
	case TierBackLink:
		return th.BackLink
	case TierForwardLink:
		return th.ForwardLink
	case TierHomePath:
		return th.HomePath
	case TierActive:
		return th.Active
	default:
		return th.Default
	}
}

// Validate rejects a non-positive scale.
func (tr Treatment) Validate() error {
	return validation.ValidateStruct(&tr,
		validation.Field(&tr.Scale, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// Validate checks every tier's treatment.
func (th Theme) Validate() error {
	return validation.ValidateStruct(&th,
		validation.Field(&th.Default),
		validation.Field(&th.BackLink),
		validation.Field(&th.ForwardLink),
		validation.Field(&th.HomePath),
		validation.Field(&th.Active),
	)
}
