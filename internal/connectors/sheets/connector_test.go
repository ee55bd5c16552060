package sheets

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"personals/internal"
	"personals/internal/config"
	"personals/internal/connectors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     header,
	}
}

func newTestConnector(t *testing.T, fn roundTripFunc) *Connector {
	t.Helper()
	c, err := NewConnectorWithOptions(context.Background(), "sheet-123", time.Second,
		option.WithHTTPClient(&http.Client{Transport: fn}),
		option.WithEndpoint("https://sheets.example.test/"),
	)
	require.NoError(t, err)
	return c
}

func TestValuesReadsFormattedRows(t *testing.T) {
	var gotQuery string
	c := newTestConnector(t, func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-123/values/") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		return jsonResponse(http.StatusOK, `{"range":"Mirror!A1:O3","majorDimension":"ROWS","values":[["Title","Approved?"],["Hello","Yes"],["Bye"]]}`), nil
	})

	rng, err := connectors.ParseRange("Mirror!A:O")
	require.NoError(t, err)

	rows, err := c.Values(context.Background(), rng)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Title", "Approved?"}, {"Hello", "Yes"}, {"Bye"}}, rows)
	assert.Contains(t, gotQuery, "valueRenderOption=FORMATTED_VALUE")
}

func TestValuesRateLimit(t *testing.T) {
	c := newTestConnector(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`), nil
	})

	_, err := c.Values(context.Background(), connectors.Range{Sheet: "Mirror", FromCol: 1, ToCol: 15, FromRow: 1})
	require.Error(t, err)
	assert.Equal(t, internal.CodeRateLimit, internal.CodeOf(err))
	assert.True(t, internal.IsRateLimit(err))
}

func TestValuesAPIError(t *testing.T) {
	c := newTestConnector(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"error":{"code":403,"message":"The caller does not have permission"}}`), nil
	})

	_, err := c.Values(context.Background(), connectors.Range{Sheet: "Mirror", FromCol: 1, ToCol: 15, FromRow: 1})
	require.Error(t, err)
	assert.Equal(t, internal.CodeAPI, internal.CodeOf(err))
}

func TestTitle(t *testing.T) {
	c := newTestConnector(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"spreadsheetId":"sheet-123","properties":{"title":"Personals Intake"}}`), nil
	})

	title, err := c.Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Personals Intake", title)
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name string
		blob string
		want CredentialKind
		err  bool
	}{
		{name: "service account", blob: `{"type":"service_account","client_email":"x@y"}`, want: KindServiceAccount},
		{name: "authorized user", blob: `{"type":"authorized_user","refresh_token":"r"}`, want: KindAuthorizedUser},
		{name: "installed client", blob: `{"installed":{"client_id":"id"}}`, want: KindOAuthClient},
		{name: "web client", blob: `{"web":{"client_id":"id"}}`, want: KindOAuthClient},
		{name: "unknown shape", blob: `{"foo":1}`, err: true},
		{name: "null installed", blob: `{"installed":null}`, err: true},
		{name: "null web", blob: `{"installed":null,"web":null}`, err: true},
		{name: "malformed", blob: `{not json`, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := DetectKind([]byte(tc.blob))
			if tc.err {
				require.Error(t, err)
				assert.Equal(t, internal.CodeCredentials, internal.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, kind)
		})
	}
}

func TestReadCredentialsPrefersInline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"authorized_user"}`), 0o600))

	blob, err := ReadCredentials(config.Config{CredentialsJSON: `{"type":"service_account"}`, CredentialsFile: path})
	require.NoError(t, err)
	assert.Contains(t, string(blob), "service_account")

	blob, err = ReadCredentials(config.Config{CredentialsFile: path})
	require.NoError(t, err)
	assert.Contains(t, string(blob), "authorized_user")

	_, err = ReadCredentials(config.Config{CredentialsFile: filepath.Join(dir, "missing.json")})
	assert.Equal(t, internal.CodeCredentials, internal.CodeOf(err))
}

func TestNewConnectorRequiresSpreadsheetID(t *testing.T) {
	_, err := NewConnector(context.Background(), config.Config{}, zerolog.Nop())
	assert.Equal(t, internal.CodeMissingConfig, internal.CodeOf(err))
}
