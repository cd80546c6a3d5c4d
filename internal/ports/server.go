package ports

// Server defines the lifecycle of an edge service hosted by the daemon
type Server interface {
	// Start begins serving; it must not block
	Start() error

	// Stop shuts the service down
	Stop() error
}
