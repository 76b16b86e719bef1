package splash

import (
	"fmt"
	"strings"
)

const (
	installerSuffix = "Installer"
	messageFormat   = "Initializing %s..."
)

// InstallerDisplayName derives the window caption from a bundle name.
func InstallerDisplayName(bundleName string) string {
	name := strings.TrimSpace(bundleName)
	if name == "" {
		return installerSuffix
	}
	return name + " " + installerSuffix
}

// StatusMessage is the text shown in the status control while the splash is up.
func StatusMessage(caption string) string {
	return fmt.Sprintf(messageFormat, caption)
}
