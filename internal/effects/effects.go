package effects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Skyy-Development/launcher-backdrop/internal/engine"
)

var registry = map[string]func() engine.Effect{
	"starfield": func() engine.Effect { return NewStarfield(defaultStarCount) },
	"fireflies": func() engine.Effect { return NewFireflies(defaultFireflyCount) },
	"pulsewave": func() engine.Effect { return NewPulseWave(defaultWaveCount) },
}

// New returns a fresh effect by name.
func New(name string) (engine.Effect, error) {
	key := strings.ToLower(name)
	if key == "" {
		key = "starfield"
	}
	factory, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown effect %q", name)
	}
	return factory(), nil
}

// Names returns the available effect identifiers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
