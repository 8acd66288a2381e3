package registry

// Core keys for GlobalRegistry and request-scoped values.
const (
	// Per-request keys, stored on the echo context.
	KeyRequestStart = "request_start"

	// Extension registries (cmd, cron, api modules, root routes), stored in GlobalRegistry.
	KeyRegistryCmd    = "registry:cmd"
	KeyRegistryCron   = "registry:cron"
	KeyRegistryAPI    = "registry:api"
	KeyRegistryRoutes = "registry:routes"
)
