// Package autostart registers the service to start at user login
package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appName        = "glucotrend"
	appDisplayName = "GlucoTrend"

	// OS constants
	osLinux   = "linux"
	osWindows = "windows"
	osDarwin  = "darwin"
)

// Launcher installs or removes the login entry for one executable
type Launcher struct {
	goos       string
	execPath   func() (string, error)
	configHome func() (string, error)
	run        func(name string, args ...string) error
}

// New returns a Launcher for the running executable on the current platform
func New() *Launcher {
	return &Launcher{
		goos:       runtime.GOOS,
		execPath:   os.Executable,
		configHome: userConfigHome,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run() //nolint:gosec // fixed commands, args from os.Executable
		},
	}
}

func userConfigHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// IsEnabled checks if the login entry exists
func (l *Launcher) IsEnabled() (bool, error) {
	switch l.goos {
	case osLinux, osDarwin:
		path, err := l.entryPath()
		if err != nil {
			return false, err
		}
		_, err = os.Stat(path)
		return err == nil, nil
	case osWindows:
		err := l.run("reg", "query", `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`, "/v", appName)
		return err == nil, nil
	default:
		return false, fmt.Errorf("unsupported platform: %s", l.goos)
	}
}

// Enable installs the login entry
func (l *Launcher) Enable() error {
	execPath, err := l.execPath()
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}

	switch l.goos {
	case osLinux, osDarwin:
		path, err := l.entryPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return err
		}
		content := desktopEntry(execPath)
		if l.goos == osDarwin {
			content = launchAgent(execPath)
		}
		return os.WriteFile(path, []byte(content), 0600)
	case osWindows:
		return l.run("reg", "add", `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`,
			"/v", appName, "/t", "REG_SZ", "/d", execPath, "/f")
	default:
		return fmt.Errorf("unsupported platform: %s", l.goos)
	}
}

// Disable removes the login entry. Removing a missing entry is not an error.
func (l *Launcher) Disable() error {
	switch l.goos {
	case osLinux, osDarwin:
		path, err := l.entryPath()
		if err != nil {
			return err
		}
		if l.goos == osDarwin {
			// may not be loaded
			_ = l.run("launchctl", "unload", path)
		}
		err = os.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	case osWindows:
		err := l.run("reg", "delete", `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`, "/v", appName, "/f")
		if err != nil && strings.Contains(err.Error(), "not exist") {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unsupported platform: %s", l.goos)
	}
}

// Apply enables or disables the login entry
func (l *Launcher) Apply(enabled bool) error {
	if enabled {
		return l.Enable()
	}
	return l.Disable()
}

func (l *Launcher) entryPath() (string, error) {
	if l.goos == osDarwin {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "LaunchAgents", "com."+appName+".plist"), nil
	}
	dir, err := l.configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "autostart", appName+".desktop"), nil
}

func desktopEntry(execPath string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
Comment=Glucose trend and 30-minute prediction service
Categories=Utility;
Terminal=false
NoDisplay=true
X-GNOME-Autostart-enabled=true
`, appDisplayName, execPath)
}

func launchAgent(execPath string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>com.%s</string>
    <key>ProgramArguments</key>
    <array>
        <string>%s</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
</dict>
</plist>
`, appName, execPath)
}
