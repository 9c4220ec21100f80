package rules

import (
	"fmt"
	"net"
	"sort"
	"strconv"
)

// Protocol selects both the engine's listen mode and its relay mode; the
// two always match.
type Protocol string

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

// ParseProtocol normalizes a protocol token from the rule file.
func ParseProtocol(s string) (Protocol, bool) {
	switch s {
	case "tcp", "TCP", "Tcp":
		return TCP, true
	case "udp", "UDP", "Udp":
		return UDP, true
	}
	return "", false
}

// Rule maps one local listening port to a remote destination.
type Rule struct {
	LocalPort int
	Host      string
	DestPort  int
	Proto     Protocol
}

// Destination renders the host:port the engine relays to.
func (r Rule) Destination() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.DestPort))
}

func (r Rule) String() string {
	return fmt.Sprintf("%d -> %s (%s)", r.LocalPort, r.Destination(), r.Proto)
}

// RuleSet is keyed by local port; a port appearing twice in the rule file
// keeps only the later definition.
type RuleSet map[int]Rule

// Ports returns the local ports in ascending order, so sweeps are
// deterministic.
func (rs RuleSet) Ports() []int {
	ports := make([]int, 0, len(rs))
	for p := range rs {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}
