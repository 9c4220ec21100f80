package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"fwdctl/pkg/config"
	"fwdctl/pkg/engine"
	"fwdctl/pkg/registry"
	"fwdctl/pkg/reporting"
	"fwdctl/pkg/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sup      *Supervisor
	engine   *engine.Fake
	registry *registry.MemoryRegistry
	reporter *reporting.CaptureReporter
	ruleFile string
}

func newFixture(t *testing.T, ruleContent string) *fixture {
	t.Helper()
	ruleFile := filepath.Join(t.TempDir(), "forwards.conf")
	require.NoError(t, os.WriteFile(ruleFile, []byte(ruleContent), 0644))

	cfg := config.Default()
	cfg.RuleFile = ruleFile

	f := &fixture{
		engine:   engine.NewFake(),
		registry: registry.NewMemory(),
		reporter: &reporting.CaptureReporter{},
		ruleFile: ruleFile,
	}
	f.sup = New(cfg, f.registry, f.engine, f.reporter)
	return f
}

func (f *fixture) rewriteRules(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.ruleFile, []byte(content), 0644))
}

func TestStartLaunchesAllRules(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n8080 10.0.0.1:80\n53 10.0.0.53:53 udp\n")

	require.NoError(t, f.sup.Start(context.Background()))

	require.Len(t, f.engine.Launched, 3)
	assert.Equal(t, 53, f.engine.Launched[0].LocalPort, "sweep runs in ascending port order")

	entries, err := f.registry.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.True(t, f.engine.Alive(e.PID))
	}
}

func TestStartMissingRuleFileIsFatal(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.Remove(f.ruleFile))

	err := f.sup.Start(context.Background())
	require.Error(t, err)
	assert.True(t, f.reporter.Has(reporting.KeyRuleFileMissing))
}

func TestStartIsIdempotent(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n")

	require.NoError(t, f.sup.Start(context.Background()))
	require.NoError(t, f.sup.Start(context.Background()))

	assert.Len(t, f.engine.Launched, 1, "no duplicate process for a live port")
	assert.True(t, f.reporter.Has(reporting.KeyAlreadyRunning))
}

func TestStartReplacesDeadEntry(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n")

	require.NoError(t, f.sup.Start(context.Background()))
	entry, found, err := f.registry.Lookup(2277)
	require.NoError(t, err)
	require.True(t, found)

	f.engine.MarkDead(entry.PID)
	require.NoError(t, f.sup.Start(context.Background()))

	fresh, found, err := f.registry.Lookup(2277)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, entry.PID, fresh.PID)
	assert.True(t, f.engine.Alive(fresh.PID))
}

func TestStartSkipsFailedRuleAndContinues(t *testing.T) {
	f := newFixture(t, "9000 192.0.2.5:9000 udp\n2277 10.77.77.2:22\n")
	f.engine.FailPorts[9000] = fmt.Errorf("%w: engine exited immediately", engine.ErrLaunchFailed)

	require.NoError(t, f.sup.Start(context.Background()), "per-rule failures never flip the sweep result")

	_, found, err := f.registry.Lookup(9000)
	require.NoError(t, err)
	assert.False(t, found, "no dangling entry for a process that never came up")
	assert.True(t, f.reporter.Has(reporting.KeyLaunchFailed))

	_, found, err = f.registry.Lookup(2277)
	require.NoError(t, err)
	assert.True(t, found, "later rules still start")
}

func TestStartReportsPortInUse(t *testing.T) {
	f := newFixture(t, "8080 10.0.0.1:80\n")
	f.engine.FailPorts[8080] = engine.ErrPortInUse

	require.NoError(t, f.sup.Start(context.Background()))
	assert.True(t, f.reporter.Has(reporting.KeyPortInUse))
}

func TestStopTerminatesAndClearsRegistry(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n8080 10.0.0.1:80\n")
	require.NoError(t, f.sup.Start(context.Background()))

	require.NoError(t, f.sup.Stop(context.Background()))

	entries, err := f.registry.List()
	require.NoError(t, err)
	assert.Empty(t, entries, "no stale entries after stop")

	report, err := f.sup.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Active)
	assert.Zero(t, report.Inactive)
}

func TestStopEscalatesToKill(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n")
	require.NoError(t, f.sup.Start(context.Background()))
	f.engine.IgnoreTerminate = true

	require.NoError(t, f.sup.Stop(context.Background()))

	assert.True(t, f.reporter.Has(reporting.KeyForceKilled))
	entries, err := f.registry.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStopCleansEntryForDeadProcess(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n")
	require.NoError(t, f.sup.Start(context.Background()))

	entry, _, err := f.registry.Lookup(2277)
	require.NoError(t, err)
	f.engine.MarkDead(entry.PID)

	require.NoError(t, f.sup.Stop(context.Background()))

	assert.True(t, f.reporter.Has(reporting.KeyAlreadyDead))
	entries, err := f.registry.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStatusReconcilesLiveness(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n8080 10.0.0.1:80\n")
	require.NoError(t, f.sup.Start(context.Background()))

	entry, _, err := f.registry.Lookup(8080)
	require.NoError(t, err)
	f.engine.MarkDead(entry.PID)

	report, err := f.sup.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Active)
	assert.Equal(t, 1, report.Inactive, "dead entries surface as inactive, not silently dropped")

	// Lazy cleanup: the dead entry is gone afterwards.
	_, found, err := f.registry.Lookup(8080)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, f.reporter.Has(reporting.KeyStatusSummary))
}

func TestRestartPicksUpLatestRules(t *testing.T) {
	f := newFixture(t, "8080 10.0.0.1:80\n")
	require.NoError(t, f.sup.Start(context.Background()))

	f.rewriteRules(t, "8080 10.0.0.2:8000\n")
	require.NoError(t, f.sup.Restart(context.Background()))

	entry, found, err := f.registry.Lookup(8080)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10.0.0.2:8000", entry.Rule.Destination(), "registry reflects only the latest load")

	entries, err := f.registry.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCancelledStartRunsStopSweep(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n8080 10.0.0.1:80\n")
	require.NoError(t, f.sup.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.sup.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, f.reporter.Has(reporting.KeyInterrupted))

	entries, listErr := f.registry.List()
	require.NoError(t, listErr)
	assert.Empty(t, entries, "no forward outlives the supervisor's own termination handling")
}

func TestStopPort(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n8080 10.0.0.1:80\n")
	require.NoError(t, f.sup.Start(context.Background()))

	require.NoError(t, f.sup.StopPort(2277))
	assert.ErrorIs(t, f.sup.StopPort(2277), registry.ErrNotRegistered)

	_, found, err := f.registry.Lookup(8080)
	require.NoError(t, err)
	assert.True(t, found, "other ports untouched")
}

func TestStartPortSingleRule(t *testing.T) {
	f := newFixture(t, "2277 10.77.77.2:22\n")
	rule := rules.Rule{LocalPort: 9999, Host: "203.0.113.7", DestPort: 80, Proto: rules.TCP}

	require.NoError(t, f.sup.StartPort(context.Background(), rule))

	entry, found, err := f.registry.Lookup(9999)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "203.0.113.7:80", entry.Rule.Destination())
}
