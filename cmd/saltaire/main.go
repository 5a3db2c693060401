// Command saltaire serves, exports and checks the Saltaire Guide site.
package main

import (
	"github.com/labstack/gommon/log"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
