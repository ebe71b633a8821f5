package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/cli"
	"github.com/railops/railops/internal/roster"
)

const rosterYAML = `
duties:
  - id: "D1"
    service: weekday
    start: "05:00"
    end: "13:00"
    home: PC
    trips:
      - code: "T42"
  - id: "D2"
    service: weekday
    start: "05:30"
    end: "13:30"
    home: PC
    trips:
      - code: Viatger
        annotation: "T42-PC-RB"
  - id: "D3"
    service: weekday
    start: "06:00"
    home: PC
trips:
  - code: "T42"
    line: S1
    origin: PC
    departure: "06:00"
    destination: RB
    arrival: "07:30"
    cycle: C7
assignments:
  C7: "113.07"
units:
  - id: "113.07"
    needs_photos: true
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rosterYAML), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	base := []string{"railops", "--fixture", writeFixture(t), "--tz", "UTC"}
	err := cli.NewApp(&out).Run(append(base, args...))
	return out.String(), err
}

func TestTimeline(t *testing.T) {
	out, err := run(t, "--at", "06:45", "timeline", "D1")
	require.NoError(t, err)

	assert.Contains(t, out, "Duty D1 (weekday) 05:00-13:00 from PC")
	assert.Contains(t, out, "Rest at PC")
	assert.Contains(t, out, "T42 S1 PC -> RB")
	assert.Contains(t, out, "113.07 (1307)")
	assert.Contains(t, out, "Rest at RB")
	assert.Contains(t, out, "At 06:45: Trip T42 PC → RB, arrives 07:30")
}

func TestTimeline_Proxy(t *testing.T) {
	out, err := run(t, "--at", "06:45", "timeline", "D2")
	require.NoError(t, err)
	assert.Contains(t, out, "(proxy)")
}

func TestStatus(t *testing.T) {
	out, err := run(t, "--at", "06:45", "status", "D1")
	require.NoError(t, err)
	assert.Equal(t, "D1 LIVE_TRIP Trip T42 PC → RB, arrives 07:30 (45 min)\n", out)

	out, err = run(t, "--at", "14:00", "status", "D1")
	require.NoError(t, err)
	assert.Equal(t, "D1 FINISHED Finished at 13:00\n", out)
}

func TestStatus_JSON(t *testing.T) {
	out, err := run(t, "--at", "07:30", "--json", "status", "D1")
	require.NoError(t, err)

	var got models.DutyStatusResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "AT_REST", got.Status.Kind)
	assert.Equal(t, "RB", got.Status.Location)
	require.NotNil(t, got.Status.RemainingMinutes)
	assert.Equal(t, 330, *got.Status.RemainingMinutes)
}

func TestBoard(t *testing.T) {
	out, err := run(t, "--at", "06:45", "board", "--service", "weekday")
	require.NoError(t, err)

	assert.Contains(t, out, "D3")
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "1307")
	assert.Contains(t, out, "At 06:45: 2 live, 0 resting, 0 not started, 0 finished")
}

func TestTrip(t *testing.T) {
	out, err := run(t, "--at", "06:45", "trip", "T42")
	require.NoError(t, err)
	assert.Equal(t, "T42 ACTIVE S1 06:00-07:30 PC -> RB unit 113.07\n", out)
}

func TestContact(t *testing.T) {
	out, err := run(t, "contact", "113.07")
	require.NoError(t, err)
	assert.Equal(t, "113.07 contact 1307 [photos]\n", out)
}

func TestErrors(t *testing.T) {
	_, err := run(t, "status", "NOPE")
	assert.ErrorIs(t, err, roster.ErrDutyNotFound)

	_, err = run(t, "--at", "7pm", "status", "D1")
	var exit urfave.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())

	_, err = run(t, "status")
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
}
