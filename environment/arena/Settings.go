package arena

import (
	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/timestep"
)

// Settings configures the base environment. Settings are validated
// once when the environment is created.
type Settings struct {
	NumAgents    int
	ActionSpaces []environment.ActionSpaceKind

	// Roles fixes the role of each agent. Nil randomises the roles at
	// every reset.
	Roles []timestep.Role

	// Characters selects the character of each agent. Nil lets the
	// engine choose.
	Characters []int

	StepRatio  int
	Difficulty int

	// Hardcore environments observe only the frame
	Hardcore bool

	Seed uint64
}

// DefaultSettings returns the settings of a single agent environment
// with multi-discrete actions and random roles
func DefaultSettings() Settings {
	return Settings{
		NumAgents:    1,
		ActionSpaces: []environment.ActionSpaceKind{environment.MultiDiscrete},
		StepRatio:    6,
		Difficulty:   3,
	}
}

// Validate returns a ConfigurationError if the settings are invalid
func (s Settings) Validate() error {
	if s.NumAgents != 1 && s.NumAgents != 2 {
		return environment.NewConfigurationError("num_agents",
			"must be 1 or 2, got %v", s.NumAgents)
	}
	if len(s.ActionSpaces) != s.NumAgents {
		return environment.NewConfigurationError("action_spaces",
			"must have one entry per agent (%v), got %v", s.NumAgents,
			len(s.ActionSpaces))
	}
	if s.Roles != nil {
		if err := validateRoles(s.Roles, s.NumAgents); err != nil {
			return err
		}
	}
	if s.Characters != nil && len(s.Characters) != s.NumAgents {
		return environment.NewConfigurationError("characters",
			"must have one entry per agent (%v), got %v", s.NumAgents,
			len(s.Characters))
	}
	if s.StepRatio < 1 || s.StepRatio > 6 {
		return environment.NewConfigurationError("step_ratio",
			"must be in [1, 6], got %v", s.StepRatio)
	}
	if s.Difficulty < 1 || s.Difficulty > 8 {
		return environment.NewConfigurationError("difficulty",
			"must be in [1, 8], got %v", s.Difficulty)
	}
	if s.Hardcore && s.NumAgents != 1 {
		return environment.NewConfigurationError("hardcore",
			"is only supported with a single agent")
	}
	return nil
}

// validateRoles returns a ConfigurationError unless roles holds one
// valid role per agent and no two agents share a role
func validateRoles(roles []timestep.Role, agents int) error {
	if len(roles) != agents {
		return environment.NewConfigurationError("roles",
			"must have one entry per agent (%v), got %v", agents, len(roles))
	}
	for _, r := range roles {
		if !r.Valid() {
			return environment.NewConfigurationError("roles",
				"must be P1 or P2, got %q", r)
		}
	}
	if agents == 2 && roles[0] == roles[1] {
		return environment.NewConfigurationError("roles",
			"agents must have different roles, got %v", roles)
	}
	return nil
}
