package engine

import (
	"fmt"
	"net"

	"fwdctl/pkg/logging"
	"fwdctl/pkg/rules"
)

// portAvailable checks whether the local port can still be bound for the
// given protocol. It binds the wildcard address the same way the engine
// will, then releases it immediately. Failing fast here gives a clear
// "port in use" instead of a confusing engine-side error.
func portAvailable(port int, proto rules.Protocol) bool {
	addr := fmt.Sprintf(":%d", port)
	switch proto {
	case rules.UDP:
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			logging.Debug("Port check: cannot bind udp %s: %v", addr, err)
			return false
		}
		_ = conn.Close()
	default:
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			logging.Debug("Port check: cannot bind tcp %s: %v", addr, err)
			return false
		}
		_ = listener.Close()
	}
	return true
}
