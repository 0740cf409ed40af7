package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const testConfigTmpl = `
ledger:
  db:
    Type: boltdb
    BoltDBOptions:
      FilePath: %s
token:
  owner: alice
  total_supply: "100000"
  metadata:
    name: Test Token
    symbol: TST
    decimals: 2
logger:
  level: error
`

type testApp struct {
	t      *testing.T
	config string
	out    bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	data := fmt.Sprintf(testConfigTmpl, filepath.Join(dir, "ledger.bolt"))
	require.NoError(t, os.WriteFile(p, []byte(data), 0600))

	exiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = exiter })

	return &testApp{t: t, config: p}
}

func (a *testApp) run(args ...string) (string, error) {
	a.out.Reset()

	app := newApp()
	app.Writer = &a.out
	app.ErrWriter = &a.out

	err := app.Run(append([]string{"ftledger", "--config", a.config}, args...))
	return strings.TrimSpace(a.out.String()), err
}

func (a *testApp) mustRun(args ...string) string {
	out, err := a.run(args...)
	require.NoError(a.t, err, out)
	return out
}

func TestCLI(t *testing.T) {
	a := newTestApp(t)

	a.mustRun("init")
	// repeated initialization checks the token only
	a.mustRun("init")

	require.Equal(t, "1000", a.mustRun("supply"))
	require.Equal(t, "1000", a.mustRun("balance", "alice"))

	out := a.mustRun("metadata")
	require.Contains(t, out, "Symbol: TST")
	require.Contains(t, out, "Decimals: 2")

	out = a.mustRun("storage-balance", "bob")
	require.Contains(t, out, "Account bob is not registered")

	a.mustRun("register", "bob")
	out = a.mustRun("storage-balance", "bob")
	require.Contains(t, out, "Total:")

	a.mustRun("transfer", "--memo", "rent", "bob", "1.5")
	require.Equal(t, "1.5", a.mustRun("balance", "bob"))
	require.Equal(t, "998.5", a.mustRun("balance", "alice"))

	_, err := a.run("--as", "bob", "transfer", "alice", "2")
	require.Error(t, err)

	a.mustRun("mint", "bob", "10")
	require.Equal(t, "11.5", a.mustRun("balance", "bob"))
	require.Equal(t, "1010", a.mustRun("supply"))

	_, err = a.run("--as", "bob", "mint", "bob", "10")
	require.Error(t, err)

	out = a.mustRun("holders")
	require.Contains(t, out, "alice\t998.5")
	require.Contains(t, out, "bob\t11.5")

	_, err = a.run("--as", "bob", "unregister")
	require.Error(t, err)

	a.mustRun("--as", "bob", "unregister", "--force")
	require.Equal(t, "998.5", a.mustRun("supply"))
	require.Equal(t, "0", a.mustRun("balance", "bob"))

	_, err = a.run("balance")
	require.Error(t, err)
}

func TestCLIDumpRestore(t *testing.T) {
	a := newTestApp(t)
	dumps := t.TempDir()

	a.mustRun("init")
	a.mustRun("register", "bob")
	a.mustRun("transfer", "bob", "7")
	a.mustRun("dump", "--out", dumps, "--label", "test")

	_, err := a.run("dump", "--out", dumps)
	require.Error(t, err)

	b := newTestApp(t)
	_, err = b.run("restore", "--out", dumps, "--label", "other")
	require.Error(t, err)

	out := b.mustRun("restore", "--out", dumps, "--label", "test")
	require.Contains(t, out, "test-")
	require.Equal(t, "7", b.mustRun("balance", "bob"))
	require.Equal(t, "1000", b.mustRun("supply"))
}
