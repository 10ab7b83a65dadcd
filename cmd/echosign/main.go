// Command echosign is the signature-wall CLI and HTTP server.
package main

import "github.com/mesh-intelligence/echosign/internal/cli"

func main() {
	cli.Execute()
}
