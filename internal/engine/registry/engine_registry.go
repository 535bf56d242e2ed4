package registry

import "github.com/edgespeak/edgespeak/internal/engine"

// Engines is the global synthesis engine registry.
var Engines = New[engine.Engine]()
