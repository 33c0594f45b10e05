package services

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// State is the coarse lifecycle state of a systemd service.
type State string

const (
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateFailed  State = "failed"
	StateUnknown State = "unknown"
)

func stateFromActive(active string) State {
	switch active {
	case "active", "running":
		return StateRunning
	case "inactive", "dead":
		return StateStopped
	case "failed":
		return StateFailed
	default:
		return StateUnknown
	}
}

// Service is one systemd unit as reported by systemctl.
type Service struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	State       State  `json:"state"`
	Enabled     bool   `json:"enabled"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	MainPID     int32  `json:"main_pid,omitempty"`
	MemoryBytes uint64 `json:"memory_bytes,omitempty"`
}

// Manager shells out to systemctl. All failure modes live here, outside the
// detection core.
type Manager struct {
	run func(args ...string) ([]byte, error)
}

// NewManager creates a systemctl-backed manager.
func NewManager() *Manager {
	return &Manager{
		run: func(args ...string) ([]byte, error) {
			out, err := exec.Command("systemctl", args...).Output()
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					return nil, fmt.Errorf("systemctl %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
				}
				return nil, fmt.Errorf("systemctl %s: %w", strings.Join(args, " "), err)
			}
			return out, nil
		},
	}
}

// List returns all systemd services with their states and resource details.
func (m *Manager) List() ([]Service, error) {
	out, err := m.run("list-units", "--type=service", "--all", "--no-pager", "--plain")
	if err != nil {
		return nil, err
	}

	var services []Service
	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}
		unit := parts[0]
		if !strings.HasSuffix(unit, ".service") {
			continue
		}

		svc := Service{
			Name:        strings.TrimSuffix(unit, ".service"),
			ActiveState: parts[2],
			SubState:    parts[3],
			State:       stateFromActive(parts[2]),
		}
		if len(parts) > 4 {
			svc.Description = strings.Join(parts[4:], " ")
		}
		svc.Enabled = m.isEnabled(svc.Name)
		m.fillDetails(&svc)

		services = append(services, svc)
	}
	return services, nil
}

func (m *Manager) isEnabled(name string) bool {
	out, err := m.run("is-enabled", name+".service")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "enabled"
}

func (m *Manager) fillDetails(svc *Service) {
	out, err := m.run("show", svc.Name+".service", "--no-pager")
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(out), "\n") {
		if value, ok := strings.CutPrefix(line, "MainPID="); ok {
			if pid, err := strconv.ParseInt(value, 10, 32); err == nil && pid > 0 {
				svc.MainPID = int32(pid)
			}
		} else if value, ok := strings.CutPrefix(line, "MemoryCurrent="); ok {
			if memo, err := strconv.ParseUint(value, 10, 64); err == nil {
				svc.MemoryBytes = memo
			}
		}
	}
}

// Start starts a service.
func (m *Manager) Start(name string) error {
	_, err := m.run("start", name+".service")
	return err
}

// Stop stops a service.
func (m *Manager) Stop(name string) error {
	_, err := m.run("stop", name+".service")
	return err
}

// Restart restarts a service.
func (m *Manager) Restart(name string) error {
	_, err := m.run("restart", name+".service")
	return err
}

// Enable enables a service at boot.
func (m *Manager) Enable(name string) error {
	_, err := m.run("enable", name+".service")
	return err
}

// Disable disables a service at boot.
func (m *Manager) Disable(name string) error {
	_, err := m.run("disable", name+".service")
	return err
}

// Status returns the human-readable status text for a service.
func (m *Manager) Status(name string) (string, error) {
	out, err := m.run("status", name+".service", "--no-pager")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
