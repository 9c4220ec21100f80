package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fwdctl/pkg/logging"
	"fwdctl/pkg/reporting"
)

// Rule file grammar, one rule per line:
//
//	<local-port> <host>:<port> [tcp|udp]
//	<local-port> <host> <port> [tcp|udp]
//
// Blank lines are skipped and '#' starts a comment (whole line or trailing).
// The protocol defaults to tcp.

// Load reads the rule file at path. It fails only when the file cannot be
// read; malformed lines are reported individually through the reporter and
// skipped, so one bad line never aborts the load.
func Load(path string, reporter reporting.Reporter) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		reporter.Report(reporting.LevelError, reporting.KeyRuleFileMissing, path, err)
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, reporter), nil
}

func parse(r io.Reader, reporter reporting.Reporter) RuleSet {
	rules := make(RuleSet)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		rule, ok := parseLine(fields, lineNo, reporter)
		if !ok {
			continue
		}
		if prev, dup := rules[rule.LocalPort]; dup {
			logging.Debug("rule file line %d: port %d redefined, %s replaced by %s",
				lineNo, rule.LocalPort, prev.Destination(), rule.Destination())
		}
		rules[rule.LocalPort] = rule
	}
	return rules
}

// parseLine validates one non-empty rule line. It reports and returns
// ok=false for anything that does not match the grammar.
func parseLine(fields []string, lineNo int, reporter reporting.Reporter) (Rule, bool) {
	raw := strings.Join(fields, " ")

	localPort, ok := parsePort(fields[0])
	if !ok {
		reporter.Report(reporting.LevelWarn, reporting.KeyRuleBadPort, lineNo, fields[0])
		return Rule{}, false
	}

	var host, destStr, protoStr string
	switch len(fields) {
	case 2: // <port> <host:port>
		host, destStr, ok = splitHostPort(fields[1])
	case 3: // <port> <host:port> <proto>  or  <port> <host> <port>
		if h, d, isPair := splitHostPort(fields[1]); isPair {
			host, destStr, protoStr = h, d, fields[2]
		} else {
			host, destStr = fields[1], fields[2]
		}
		ok = true
	case 4: // <port> <host> <port> <proto>
		host, destStr, protoStr = fields[1], fields[2], fields[3]
	default:
		ok = false
	}
	if !ok || host == "" {
		reporter.Report(reporting.LevelWarn, reporting.KeyRuleBadLine, lineNo, raw)
		return Rule{}, false
	}

	destPort, ok := parsePort(destStr)
	if !ok {
		reporter.Report(reporting.LevelWarn, reporting.KeyRuleBadPort, lineNo, destStr)
		return Rule{}, false
	}

	proto := TCP
	if protoStr != "" {
		proto, ok = ParseProtocol(protoStr)
		if !ok {
			reporter.Report(reporting.LevelWarn, reporting.KeyRuleBadProto, lineNo, protoStr)
			return Rule{}, false
		}
	}

	return Rule{LocalPort: localPort, Host: host, DestPort: destPort, Proto: proto}, true
}

// splitHostPort splits "host:port" without resolving anything. Returns
// ok=false when the token has no colon (plain host).
func splitHostPort(token string) (host, port string, ok bool) {
	idx := strings.LastIndexByte(token, ':')
	if idx <= 0 || idx == len(token)-1 {
		return "", "", false
	}
	return token[:idx], token[idx+1:], true
}

func parsePort(s string) (int, bool) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}
