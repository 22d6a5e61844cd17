package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/impactreport/impact/backend/go-services/internal/content/service"
	"github.com/impactreport/impact/backend/go-services/internal/users"
)

func memoryOpener() (opener, *service.Service, *users.Service) {
	content := service.NewMemoryService()
	us := users.NewServiceWithCost(users.NewMemoryUserRepository(), bcrypt.MinCost)
	return func(ctx context.Context) (*backends, error) {
		return &backends{content: content, users: us, close: func() {}}, nil
	}, content, us
}

func run(t *testing.T, open opener, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSectionsCommand(t *testing.T) {
	open, _, _ := memoryOpener()
	out, err := run(t, open, "", "sections")
	require.NoError(t, err)
	require.Contains(t, out, "flex-a")
	require.Contains(t, out, "flex_a")
	require.Contains(t, out, "footer")
}

func TestPutFromStdinThenGet(t *testing.T) {
	open, _, _ := memoryOpener()
	out, err := run(t, open, `{"headline":"From the CLI"}`, "put", "flex-a", "--slug", "demo")
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	header := data["header"].(map[string]any)
	require.Equal(t, "From the CLI", header["title"])

	out, err = run(t, open, "", "get", "flex-a", "-s", "demo")
	require.NoError(t, err)
	require.Contains(t, out, "From the CLI")

	out, err = run(t, open, "", "get", "--slug", "demo")
	require.NoError(t, err)
	require.Contains(t, out, `"flex-a"`)
}

func TestPutFromFile(t *testing.T) {
	open, svc, _ := memoryOpener()
	path := filepath.Join(t.TempDir(), "hero.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"Hello","bogus":1}`), 0o600))

	_, err := run(t, open, "", "put", "hero", "-f", path)
	require.NoError(t, err)

	data, err := svc.Get(context.Background(), "hero", "")
	require.NoError(t, err)
	require.Equal(t, "Hello", data["title"])
	require.NotContains(t, data, "bogus")
}

func TestGetUnknownSection(t *testing.T) {
	open, _, _ := memoryOpener()
	_, err := run(t, open, "", "get", "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope")
}

func TestCreateAdmin(t *testing.T) {
	open, _, us := memoryOpener()
	out, err := run(t, open, "", "create-admin", "Root@Example.org", "-p", "long-enough-pw", "--first-name", "Root")
	require.NoError(t, err)
	require.Contains(t, out, "root@example.org")

	u, err := us.Authenticate(context.Background(), "root@example.org", "long-enough-pw")
	require.NoError(t, err)
	require.True(t, u.Admin)

	_, err = run(t, open, "", "create-admin", "x@example.org", "-p", "short")
	require.Error(t, err)
}
