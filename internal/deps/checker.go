package deps

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"viracoach/log"
)

// CheckDependency diagnoses the external tool inventory and fails when a
// must-have binary cannot be resolved. Optional tools only log.
func CheckDependency() error {
	states := ResolveDependencyInventory()
	log.GetLogger().Info("dependency diagnosis", zap.String("report", FormatDependencyReport(states)))

	var missing []string
	for _, state := range states {
		if state.Tier == DependencyTierMust && state.Status != DependencyStatusOK {
			missing = append(missing, state.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools unavailable: %s", strings.Join(missing, ", "))
	}
	return nil
}
