package recipe

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/graph"
	"github.com/buildgen-dev/buildgen/internal/pkgfile"
	"github.com/buildgen-dev/buildgen/pkg/log"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	tool := &config.ToolConfig{ProjectRoot: root}
	config.ApplyDefaults(tool)
	cfg, err := config.NewConfig(root, tool, config.DefaultPackageConfigurationType)
	require.NoError(t, err)
	return cfg
}

func recipePackages(t *testing.T, cfg *config.Config, commands [][]string) []*graph.Package {
	t.Helper()
	dir := filepath.Join(cfg.ProjectRoot(), "ThirdParty", "zlib")
	require.NoError(t, os.MkdirAll(dir, 0755))

	zlib := &pkgfile.Definition{
		Name:    "ThirdParty.Zlib",
		Type:    pkgfile.TypeExternal,
		Version: "1.3.1",
		Dir:     dir,
		Recipe:  &pkgfile.Recipe{Name: "zlib", Version: "1.3.1", Commands: commands},
	}
	app := &pkgfile.Definition{Name: "App", Type: pkgfile.TypeExecutable, Version: "1.0.0", Dependencies: []string{"ThirdParty.Zlib"}}
	g, err := graph.Resolve([]*pkgfile.Definition{app, zlib}, "ubuntu")
	require.NoError(t, err)
	return g.Ordered()
}

func TestRecordMarshal(t *testing.T) {
	built := time.Unix(1700000000, 0)
	rec := &Record{Name: "zlib", Version: "1.3.1", Hash: "abc", Platform: "ubuntu", Built: built}

	got, err := UnmarshalRecord(rec.Marshal())
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.Version, got.Version)
	assert.Equal(t, rec.Hash, got.Hash)
	assert.Equal(t, rec.Platform, got.Platform)
	assert.True(t, built.Equal(got.Built))

	_, err = UnmarshalRecord([]byte{1})
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	rec, err := store.Get("ubuntu", "zlib")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Put(&Record{Name: "zlib", Version: "1.3.1", Hash: "h1", Platform: "ubuntu", Built: time.Now()}))

	rec, err = store.Get("ubuntu", "zlib")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "h1", rec.Hash)

	rec, err = store.Get("windows", "zlib")
	require.NoError(t, err)
	assert.Nil(t, rec, "records are per platform")

	require.NoError(t, store.Delete("ubuntu", "zlib"))
	rec, err = store.Get("ubuntu", "zlib")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestClaim(t *testing.T) {
	area := filepath.Join(t.TempDir(), "install")

	require.NoError(t, Claim(area, "/projects/a", false))
	owner, err := Owner(area)
	require.NoError(t, err)
	assert.Equal(t, "/projects/a", owner)

	require.NoError(t, Claim(area, "/projects/a", false), "re-claiming own area")

	err = Claim(area, "/projects/b", false)
	assert.ErrorIs(t, err, ErrInstallAreaClaimed)
	assert.ErrorContains(t, err, "is claimed by /projects/a; use --ForceClaimInstallArea")

	require.NoError(t, Claim(area, "/projects/b", true))
	owner, err = Owner(area)
	require.NoError(t, err)
	assert.Equal(t, "/projects/b", owner)
}

func TestHash(t *testing.T) {
	a := &pkgfile.Recipe{Name: "zlib", Version: "1.3.1", Commands: [][]string{{"make", "install"}}}
	b := &pkgfile.Recipe{Name: "zlib", Version: "1.3.1", Commands: [][]string{{"make"}, {"install"}}}
	assert.Equal(t, Hash(a), Hash(a))
	assert.NotEqual(t, Hash(a), Hash(b))
}

func TestExpandCommand(t *testing.T) {
	dirs := Dirs{Source: "/src", Build: "/b", Install: "/i", Platform: "ubuntu", Name: "zlib", Version: "1.3.1"}
	got, err := ExpandCommand([]string{"cmake", "-S", "{{.Source}}", "-DCMAKE_INSTALL_PREFIX={{.Install}}", "{{.Name}}-{{.Version}}"}, dirs)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmake", "-S", "/src", "-DCMAKE_INSTALL_PREFIX=/i", "zlib-1.3.1"}, got)

	_, err = ExpandCommand([]string{"{{.Missing}}"}, dirs)
	assert.Error(t, err)
}

func TestBuildPackages(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	cfg := newTestConfig(t)
	pkgs := recipePackages(t, cfg, [][]string{
		{"sh", "-c", "echo built >> {{.Install}}/zlib.marker"},
	})

	summary, err := BuildPackages(context.Background(), cfg, "ubuntu", pkgs, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"zlib"}, summary.Built)

	marker := filepath.Join(cfg.InstallArea(), "ubuntu", "zlib.marker")
	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))
	assert.FileExists(t, filepath.Join(cfg.InstallArea(), OwnerFile))
	assert.FileExists(t, filepath.Join(cfg.InstallArea(), DatabaseName))

	summary, err = BuildPackages(context.Background(), cfg, "ubuntu", pkgs, Options{})
	require.NoError(t, err)
	assert.Empty(t, summary.Built)
	assert.Equal(t, []string{"zlib"}, summary.Skipped)

	data, err = os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data), "up to date recipe must not run again")
}

func TestBuildPackagesFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	cfg := newTestConfig(t)
	pkgs := recipePackages(t, cfg, [][]string{{"sh", "-c", "echo broken; exit 3"}})

	_, err := BuildPackages(context.Background(), cfg, "ubuntu", pkgs, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipe zlib: command sh failed: exit status 3: broken")
}

func TestBuildPackagesFailedRebuildDropsRecord(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	cfg := newTestConfig(t)
	ok := recipePackages(t, cfg, [][]string{{"sh", "-c", "true"}})
	_, err := BuildPackages(context.Background(), cfg, "ubuntu", ok, Options{})
	require.NoError(t, err)

	broken := recipePackages(t, cfg, [][]string{{"sh", "-c", "exit 1"}})
	_, err = BuildPackages(context.Background(), cfg, "ubuntu", broken, Options{})
	require.Error(t, err)

	store, err := OpenStore(cfg.InstallArea())
	require.NoError(t, err)
	defer store.Close()
	rec, err := store.Get("ubuntu", "zlib")
	require.NoError(t, err)
	assert.Nil(t, rec, "a failed rebuild must not leave the previous record behind")
}

func TestBuildPackagesDryRun(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.ForceDisableAllWrites()
	pkgs := recipePackages(t, cfg, [][]string{{"make", "-C", "{{.Build}}"}})

	var buf bytes.Buffer
	log.SetOutput(&buf, "info")
	defer log.SetOutput(os.Stdout, "info")

	summary, err := BuildPackages(context.Background(), cfg, "ubuntu", pkgs, Options{})
	require.NoError(t, err)
	assert.Empty(t, summary.Built)
	assert.Contains(t, buf.String(), "would run make -C "+filepath.Join(cfg.InstallArea(), "ubuntu", "build", "zlib"))
	assert.NoDirExists(t, cfg.InstallArea())
}

func TestBuildPackagesFilter(t *testing.T) {
	cfg := newTestConfig(t)
	pkgs := recipePackages(t, cfg, [][]string{{"false"}})

	summary, err := BuildPackages(context.Background(), cfg, "ubuntu", pkgs, Options{Filter: []string{"openssl*"}})
	require.NoError(t, err)
	assert.Empty(t, summary.Built)
	assert.Empty(t, summary.Skipped)
	assert.NoDirExists(t, cfg.InstallArea())
}
