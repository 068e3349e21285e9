// Package netinfo enumerates host network interfaces.
package netinfo

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// sysClassNet is a variable so tests can point it at a fixture tree.
var sysClassNet = "/sys/class/net"

// PhysicalInterfaceNames lists the interfaces backed by a physical
// device, recognized by the presence of device/vendor in sysfs. Virtual
// interfaces such as lo or bridges are skipped.
func PhysicalInterfaceNames() ([]string, error) {
	entries, err := os.ReadDir(sysClassNet)
	if err != nil {
		return nil, errors.Wrap(err, "listing network interfaces")
	}
	var names []string
	for _, e := range entries {
		vendor := filepath.Join(sysClassNet, e.Name(), "device", "vendor")
		if _, err := os.Stat(vendor); err == nil {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
