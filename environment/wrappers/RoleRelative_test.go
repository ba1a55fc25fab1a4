package wrappers

import (
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// sideOf returns the side reading of the player at path
func sideOf(t *testing.T, o space.Value, path ...string) float64 {
	t.Helper()
	return lookupInts(t, o, append(path, "side")...)[0]
}

func TestRoleRelativeSingleAgent(t *testing.T) {
	for _, role := range []ts.Role{ts.P1, ts.P2} {
		base, _ := newBase(t, [3]int{1, 1, 1}, func(s *arena.Settings) {
			s.Roles = []ts.Role{role}
		})
		env, err := NewRoleRelative(base)
		if err != nil {
			t.Fatal(err)
		}

		obsSpace := env.ObservationSpace()
		for _, key := range []string{"P1", "P2"} {
			if _, ok := obsSpace.Child(key); ok {
				t.Errorf("%v: space still holds %v", role, key)
			}
		}
		for _, key := range []string{OwnKey, OppKey} {
			if _, ok := obsSpace.Child(key); !ok {
				t.Errorf("%v: space missing %v", role, key)
			}
		}

		mustReset(t, env)
		step := mustStep(t, env, base.Context().NoOpAction())

		// The scripted engine reports side 0 for P1 and 1 for P2
		own, opp := sideOf(t, step.Observation, OwnKey),
			sideOf(t, step.Observation, OppKey)
		wantOwn := 0.0
		if role == ts.P2 {
			wantOwn = 1
		}
		if own != wantOwn || opp != 1-wantOwn {
			t.Errorf("%v: expected own side %v and opp side %v, got %v and %v",
				role, wantOwn, 1-wantOwn, own, opp)
		}
	}
}

// TestRoleRelativeRandomRoles checks that relabelling follows the roles
// drawn at every reset
func TestRoleRelativeRandomRoles(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, func(s *arena.Settings) {
		s.Seed = 3
	})
	env, err := NewRoleRelative(base)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[ts.Role]bool)
	for i := 0; i < 20; i++ {
		step := mustReset(t, env)
		role := step.Info.Settings.Role(0)
		seen[role] = true

		want := 0.0
		if role == ts.P2 {
			want = 1
		}
		if got := sideOf(t, step.Observation, OwnKey); got != want {
			t.Errorf("reset %v: role %v observed own side %v", i, role, got)
		}
	}
	if !seen[ts.P1] || !seen[ts.P2] {
		t.Errorf("expected both roles in 20 resets, got %v", seen)
	}
}

func TestRoleRelativeTwoAgents(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, func(s *arena.Settings) {
		twoAgents(s)
		s.Roles = []ts.Role{ts.P2, ts.P1}
	})
	env, err := Wrap(base, AddLastActionLayer(), RoleRelativeLayer())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		agent := environment.AgentKey(i)
		for _, key := range []string{OwnKey, OppKey, ActionKey} {
			if _, ok := env.ObservationSpace().Lookup(agent, key); !ok {
				t.Errorf("space missing %v/%v", agent, key)
			}
		}
	}

	mustReset(t, env)
	step := mustStep(t, env, environment.Action{{1, 1}, {2, 2}})
	o := step.Observation

	// Agent 0 plays P2
	if got := sideOf(t, o, environment.AgentKey(0), OwnKey); got != 1 {
		t.Errorf("agent 0: expected own side 1, got %v", got)
	}
	if got := sideOf(t, o, environment.AgentKey(1), OwnKey); got != 0 {
		t.Errorf("agent 1: expected own side 0, got %v", got)
	}

	// Each agent's own observation is the other's opponent observation
	for _, key := range []string{"health", "side", "wins"} {
		own0 := lookupInts(t, o, environment.AgentKey(0), OwnKey, key)
		opp1 := lookupInts(t, o, environment.AgentKey(1), OppKey, key)
		if !equalFloats(own0, opp1) {
			t.Errorf("%v: agent 0 own %v differs from agent 1 opp %v", key,
				own0, opp1)
		}
	}
}

func TestRoleRelativeHardcore(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, hardcore)
	if _, err := NewRoleRelative(base); !environment.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
