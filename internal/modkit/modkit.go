package modkit

import "evqmigrate/internal/modkit/module"

// Module is the common surface for modules that expose ports
type Module = module.Module
