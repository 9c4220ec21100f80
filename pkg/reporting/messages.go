package reporting

// Message keys emitted by the core. The console renderer maps them to
// English text; other renderers may translate or reformat.
const (
	KeyRuleFileMissing = "rules.file_missing"
	KeyRuleBadLine     = "rules.bad_line"
	KeyRuleBadPort     = "rules.bad_port"
	KeyRuleBadProto    = "rules.bad_proto"

	KeyStartSweep     = "start.sweep"
	KeyAlreadyRunning = "start.already_running"
	KeyPortInUse      = "start.port_in_use"
	KeyLaunchFailed   = "start.launch_failed"
	KeyStarted        = "start.started"

	KeyStopSweep   = "stop.sweep"
	KeyStopped     = "stop.stopped"
	KeyForceKilled = "stop.force_killed"
	KeyAlreadyDead = "stop.already_dead"
	KeyNoForwards  = "stop.nothing_running"

	KeyStatusActive   = "status.active"
	KeyStatusInactive = "status.inactive"
	KeyStatusSummary  = "status.summary"

	KeyInterrupted = "lifecycle.interrupted"
	KeyRestarting  = "lifecycle.restarting"
)

// englishMessages is the default rendering table.
var englishMessages = map[string]string{
	KeyRuleFileMissing: "cannot read rule file %s: %v",
	KeyRuleBadLine:     "rule file line %d: ignoring malformed line %q",
	KeyRuleBadPort:     "rule file line %d: port %q outside 1-65535, line ignored",
	KeyRuleBadProto:    "rule file line %d: unknown protocol %q, line ignored",

	KeyStartSweep:     "starting forwards for %d rule(s)",
	KeyAlreadyRunning: "port %d: already forwarded (pid %d), skipping",
	KeyPortInUse:      "port %d: local %s port already in use, skipping",
	KeyLaunchFailed:   "port %d: forwarding engine failed to start: %v",
	KeyStarted:        "port %d: forwarding to %s (%s) started, pid %d",

	KeyStopSweep:   "stopping %d supervised forward(s)",
	KeyStopped:     "port %d: stopped (pid %d)",
	KeyForceKilled: "port %d: pid %d ignored the termination signal, killed",
	KeyAlreadyDead: "port %d: pid %d already gone, entry cleaned up",
	KeyNoForwards:  "no supervised forwards",

	KeyStatusActive:   "port %d: active (pid %d)",
	KeyStatusInactive: "port %d: inactive",
	KeyStatusSummary:  "%d active, %d inactive",

	KeyInterrupted: "interrupted, stopping supervised forwards",
	KeyRestarting:  "restarting all forwards",
}
