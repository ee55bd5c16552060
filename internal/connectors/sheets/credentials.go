package sheets

import (
	"bytes"
	"context"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"personals/internal"
	"personals/internal/config"
)

type credentialShape struct {
	Type      string          `json:"type"`
	Installed json.RawMessage `json:"installed"`
	Web       json.RawMessage `json:"web"`
}

type CredentialKind string

const (
	KindServiceAccount CredentialKind = "service_account"
	KindAuthorizedUser CredentialKind = "authorized_user"
	KindOAuthClient    CredentialKind = "oauth_client"
)

// ReadCredentials returns the raw credential JSON, preferring the inline env value over the file.
func ReadCredentials(cfg config.Config) ([]byte, error) {
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if strings.TrimSpace(cfg.CredentialsFile) == "" {
		return nil, internal.NewError(internal.CodeCredentials, "failed to load credentials: no GOOGLE_SHEETS_CREDENTIALS or GOOGLE_CREDENTIALS_FILE set")
	}
	blob, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, internal.WrapError(internal.CodeCredentials, err, "failed to load credentials")
	}
	return blob, nil
}

// DetectKind classifies a credential document.
func DetectKind(blob []byte) (CredentialKind, error) {
	var shape credentialShape
	if err := json.Unmarshal(blob, &shape); err != nil {
		return "", internal.WrapError(internal.CodeCredentials, err, "failed to load credentials")
	}
	switch {
	case shape.Type == string(KindServiceAccount):
		return KindServiceAccount, nil
	case shape.Type == string(KindAuthorizedUser):
		return KindAuthorizedUser, nil
	case present(shape.Installed) || present(shape.Web):
		return KindOAuthClient, nil
	default:
		return "", internal.NewError(internal.CodeCredentials, "failed to load credentials: invalid credentials format, expected service account or OAuth2 credentials")
	}
}

// present is false for a missing key and for an explicit null.
func present(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// LoadCredentials builds read-only Sheets credentials. OAuth client configs
// fall back to application default credentials.
func LoadCredentials(ctx context.Context, cfg config.Config) (*google.Credentials, CredentialKind, error) {
	blob, err := ReadCredentials(cfg)
	if err != nil {
		return nil, "", err
	}
	kind, err := DetectKind(blob)
	if err != nil {
		return nil, "", err
	}

	var creds *google.Credentials
	switch kind {
	case KindServiceAccount, KindAuthorizedUser:
		creds, err = google.CredentialsFromJSON(ctx, blob, sheets.SpreadsheetsReadonlyScope)
	default:
		creds, err = google.FindDefaultCredentials(ctx, sheets.SpreadsheetsReadonlyScope)
	}
	if err != nil {
		return nil, "", internal.WrapError(internal.CodeCredentials, err, "failed to load credentials")
	}
	return creds, kind, nil
}
