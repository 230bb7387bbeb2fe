package commands

import (
	"strings"
	"testing"
)

func TestMigrateSubcommands(t *testing.T) {
	cmd := NewMigrateCommand()
	want := map[string]bool{"up": false, "down": false, "version": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("migrate %s not registered", name)
		}
	}
}

func TestUserCreateRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no email", []string{"create", "--password", "secret123"}},
		{"short password", []string{"create", "--email", "a@b.io", "--password", "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewUserCommand()
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if err == nil || !strings.Contains(err.Error(), "password of at least 8") {
				t.Fatalf("expected credential error, got %v", err)
			}
		})
	}
}
