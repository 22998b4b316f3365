// Command caseseam lists and updates cases through a storage seam that
// can point at a local SQLite file or the caseseam HTTP API, and serves
// that API.
package main

import "github.com/mesh-intelligence/caseseam/internal/cli"

func main() {
	cli.Execute()
}
