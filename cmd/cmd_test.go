package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/routefix/core/logger"
)

const marker = "export const dynamic = 'force-dynamic';"

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes routefix with args inside dir and returns what it printed.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	chdir(t, dir)
	t.Setenv("TMPDIR", t.TempDir())
	logger.SetWriterForAll(io.Discard)
	t.Cleanup(func() { logger.SetWriterForAll(os.Stdout) })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCheckEmptyTree(t *testing.T) {
	out, err := run(t, t.TempDir(), "check")
	require.NoError(t, err)
	assert.Equal(t, "No improper imports of API route files found.\n", out)
}

func TestCheckReportsImports(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"app/foo.ts":                `import x from "../app/api/users/route.ts"` + "\n",
		"node_modules/pkg/index.js": `import y from "../app/api/users/route.js"` + "\n",
	})

	out, err := run(t, dir, "check")
	require.NoError(t, err)
	assert.Equal(t, "Found improper imports of API route files:\n"+
		"  File: "+filepath.Join("app", "foo.ts")+"\n"+
		"  Imports: ../app/api/users/route.ts\n\n", out)
}

func TestCheckExplicitRootAndTableFormat(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"web/app/foo.ts": `import x from "../app/api/users/route.ts"` + "\n",
	})

	out, err := run(t, dir, "check", "web", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("web", "app", "foo.ts"))
	assert.Contains(t, out, "Total: 1 imports in 1 files")
}

func TestCheckFail(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.ts": `import x from "../app/api/users/route.ts"`,
	})

	_, err := run(t, dir, "check", "--fail")
	assert.ErrorIs(t, err, ErrImportsFound)

	_, err = run(t, t.TempDir(), "check", "--fail")
	assert.NoError(t, err)
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "check", "--format", "json")
	assert.ErrorContains(t, err, "unknown output.format")
}

func TestFixDefaultDirectory(t *testing.T) {
	dir := t.TempDir()
	original := "export async function GET() {}\n"
	writeFiles(t, dir, map[string]string{"app/api/users/route.ts": original})
	routeFile := filepath.Join("app", "api", "users", "route.ts")

	out, err := run(t, dir, "fix")
	require.NoError(t, err)
	assert.Equal(t, "Added dynamic export to "+routeFile+"\n", out)
	assert.Equal(t, marker+"\n\n"+original, readFile(t, filepath.Join(dir, routeFile)))

	out, err = run(t, dir, "fix")
	require.NoError(t, err)
	assert.Equal(t, "Dynamic export already present in "+routeFile+"\n", out)
	assert.Equal(t, marker+"\n\n"+original, readFile(t, filepath.Join(dir, routeFile)))
}

func TestFixNoRouteFiles(t *testing.T) {
	out, err := run(t, t.TempDir(), "fix")
	require.NoError(t, err)
	assert.Equal(t, "No route.ts or route.js files found under "+filepath.Join("app", "api")+".\n", out)
}

func TestFixDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"src/route.js": "module.exports = {}\n"})

	out, err := run(t, dir, "fix", "src", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Added dynamic export to "+filepath.Join("src", "route.js"))
	assert.Contains(t, out, "+"+marker)
	assert.Equal(t, "module.exports = {}\n", readFile(t, filepath.Join(dir, "src", "route.js")))
}

func TestFixUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"routefix.yaml":                 "fix:\n  dir: web\n  apply_exclude: true\n",
		"web/users/route.ts":            "u\n",
		"web/node_modules/pkg/route.ts": "n\n",
	})

	out, err := run(t, dir, "fix")
	require.NoError(t, err)
	assert.Equal(t, "Added dynamic export to "+filepath.Join("web", "users", "route.ts")+"\n", out)
	assert.Equal(t, "n\n", readFile(t, filepath.Join(dir, "web", "node_modules", "pkg", "route.ts")))
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"routefix.yaml": "scan: ["})

	_, err := run(t, dir, "check")
	assert.ErrorContains(t, err, "failed to parse yaml")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote routefix.yaml")
	assert.Contains(t, readFile(t, filepath.Join(dir, "routefix.yaml")), "force-dynamic")

	out, err = run(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, dir, "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote routefix.yaml")
}

func TestInitWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"routefix.yaml": "scan: ["})
	logPath := filepath.Join(t.TempDir(), "routefix.log")

	_, err := run(t, dir, "init", "--force", "--verbose", "--logfile", logPath)
	require.NoError(t, err)

	assert.Contains(t, readFile(t, logPath), "init called")
	assert.Contains(t, readFile(t, filepath.Join(dir, "routefix.yaml")), "force-dynamic")
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "Routefix dev\n", out)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
