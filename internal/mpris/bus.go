package mpris

import (
	"github.com/godbus/dbus/v5"
)

// Conn defines the D-Bus operations the bridge performs on its own objects.
// This abstraction allows us to exercise export and shutdown without a session bus.
type Conn interface {
	// Export publishes v's methods at path under iface
	Export(v interface{}, path dbus.ObjectPath, iface string) error

	// RequestName claims a well-known bus name
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)

	// ReleaseName gives the well-known name back
	ReleaseName(name string) (dbus.ReleaseNameReply, error)

	// Close closes the D-Bus connection
	Close() error
}

// propertySetter updates an exported property and emits PropertiesChanged.
// *prop.Properties implements it.
type propertySetter interface {
	SetMust(iface, property string, v interface{})
}

// connectSessionBus opens a private session bus connection
func connectSessionBus() (*dbus.Conn, error) {
	return dbus.ConnectSessionBus()
}

var _ Conn = (*dbus.Conn)(nil)
