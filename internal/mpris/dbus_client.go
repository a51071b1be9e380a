package mpris

import (
	"github.com/godbus/dbus/v5"
)

// DBusClient defines the D-Bus operations the server needs.
// Tests substitute a mock for the session bus connection.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/hueplay/internal/mpris DBusClient
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// Export publishes the methods of v as iface at path
	Export(v any, path dbus.ObjectPath, iface string) error

	// RequestName claims a well-known bus name
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)

	// ReleaseName gives a well-known bus name back
	ReleaseName(name string) (dbus.ReleaseNameReply, error)

	// Emit sends a signal from path
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient connects to the session bus
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// Export publishes the methods of v as iface at path
func (c *StdDBusClient) Export(v any, path dbus.ObjectPath, iface string) error {
	return c.conn.Export(v, path, iface)
}

// RequestName claims a well-known bus name
func (c *StdDBusClient) RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	return c.conn.RequestName(name, flags)
}

// ReleaseName gives a well-known bus name back
func (c *StdDBusClient) ReleaseName(name string) (dbus.ReleaseNameReply, error) {
	return c.conn.ReleaseName(name)
}

// Emit sends a signal from path
func (c *StdDBusClient) Emit(path dbus.ObjectPath, name string, values ...any) error {
	return c.conn.Emit(path, name, values...)
}
