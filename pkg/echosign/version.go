// Package echosign holds release metadata for the echosign module.
package echosign

// Version is the module release version.
const Version = "0.3.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/echosign"
