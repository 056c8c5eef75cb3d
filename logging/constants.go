package logging

// These constants are used to identify the various services that may do some logging
const (
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
	// COMPILATION_SERVICE is the constant used to identify the compilation package
	COMPILATION_SERVICE = "compilation"
	// BINDGEN_SERVICE is the constant used to identify the bindgen package
	BINDGEN_SERVICE = "bindgen"
	// CACHE_SERVICE is the constant used to identify the cache package
	CACHE_SERVICE = "cache"
)
