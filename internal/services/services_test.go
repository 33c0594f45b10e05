package services

import (
	"strings"
	"testing"
)

const listUnitsOutput = `UNIT LOAD ACTIVE SUB DESCRIPTION
cron.service loaded active running Regular background program processing daemon
nginx.service loaded failed failed A high performance web server
session-1.scope loaded active running Session 1 of user root
old.service loaded inactive dead Some retired daemon
`

func fakeManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{
		run: func(args ...string) ([]byte, error) {
			switch args[0] {
			case "list-units":
				return []byte(listUnitsOutput), nil
			case "is-enabled":
				if strings.HasPrefix(args[1], "cron") {
					return []byte("enabled\n"), nil
				}
				return []byte("disabled\n"), nil
			case "show":
				return []byte("MainPID=4242\nMemoryCurrent=1048576\n"), nil
			default:
				t.Fatalf("unexpected systemctl call: %v", args)
				return nil, nil
			}
		},
	}
}

func TestListParsesServices(t *testing.T) {
	services, err := fakeManager(t).List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(services) != 3 {
		t.Fatalf("expected 3 services (scope ignored), got %d", len(services))
	}

	cron := services[0]
	if cron.Name != "cron" || cron.State != StateRunning || !cron.Enabled {
		t.Fatalf("unexpected cron entry: %+v", cron)
	}
	if cron.Description != "Regular background program processing daemon" {
		t.Fatalf("unexpected description: %q", cron.Description)
	}
	if cron.MainPID != 4242 || cron.MemoryBytes != 1048576 {
		t.Fatalf("details not filled: %+v", cron)
	}

	if services[1].State != StateFailed {
		t.Fatalf("expected nginx failed, got %s", services[1].State)
	}
	if services[2].State != StateStopped {
		t.Fatalf("expected old stopped, got %s", services[2].State)
	}
}

func TestStateFromActive(t *testing.T) {
	cases := map[string]State{
		"active":   StateRunning,
		"running":  StateRunning,
		"inactive": StateStopped,
		"dead":     StateStopped,
		"failed":   StateFailed,
		"weird":    StateUnknown,
	}
	for raw, want := range cases {
		if got := stateFromActive(raw); got != want {
			t.Fatalf("%q: expected %s, got %s", raw, want, got)
		}
	}
}
