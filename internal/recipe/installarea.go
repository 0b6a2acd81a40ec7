package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/buildgen-dev/buildgen/pkg/log"
)

// OwnerFile marks the project that owns an install area.
const OwnerFile = ".buildgen-owner"

// ErrInstallAreaClaimed is returned when the install area belongs to another project.
var ErrInstallAreaClaimed = errors.New("install area claimed")

// Owner returns the project root recorded in the install area, or "" when
// the area is unclaimed.
func Owner(installArea string) (string, error) {
	data, err := os.ReadFile(filepath.Join(installArea, OwnerFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Claim makes projectRoot the owner of installArea. An area owned by a
// different project is only taken over when force is set.
func Claim(installArea, projectRoot string, force bool) error {
	owner, err := Owner(installArea)
	if err != nil {
		return fmt.Errorf("failed to read owner of install area %s: %w", installArea, err)
	}
	if owner == projectRoot {
		return nil
	}
	if owner != "" {
		if !force {
			return fmt.Errorf("%w: install area %s is claimed by %s; use --ForceClaimInstallArea", ErrInstallAreaClaimed, installArea, owner)
		}
		log.Warn().Msgf("install area %s was claimed by %s, claiming it for %s", installArea, owner, projectRoot)
	}

	if err := os.MkdirAll(installArea, 0755); err != nil {
		return fmt.Errorf("failed to create install area %s: %w", installArea, err)
	}
	if err := os.WriteFile(filepath.Join(installArea, OwnerFile), []byte(projectRoot+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to claim install area %s: %w", installArea, err)
	}
	return nil
}
