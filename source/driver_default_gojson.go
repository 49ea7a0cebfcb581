// Package source installs go-json as the default JSON driver when imported.
package source

import (
	"github.com/reoring/resilient"
	drvgojson "github.com/reoring/resilient/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { resilient.SetJSONDriver(drvgojson.Driver()) }
