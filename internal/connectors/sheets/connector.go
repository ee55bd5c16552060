package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"personals/internal"
	"personals/internal/config"
	"personals/internal/connectors"
)

type Connector struct {
	service       *sheets.Service
	spreadsheetID string
	timeout       time.Duration
}

func NewConnector(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Connector, error) {
	if err := cfg.Require("GOOGLE_SPREADSHEET_ID", cfg.SpreadsheetID); err != nil {
		return nil, err
	}

	creds, kind, err := LoadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("kind", string(kind)).Msg("using google credentials")

	return NewConnectorWithOptions(ctx, cfg.SpreadsheetID, time.Duration(cfg.RequestTimeoutSecs)*time.Second, option.WithCredentials(creds))
}

// NewConnectorWithOptions builds a connector from explicit client options.
func NewConnectorWithOptions(ctx context.Context, spreadsheetID string, timeout time.Duration, opts ...option.ClientOption) (*Connector, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, internal.WrapError(internal.CodeCredentials, err, "failed to create sheets client")
	}
	return &Connector{service: svc, spreadsheetID: spreadsheetID, timeout: timeout}, nil
}

func (c *Connector) Title(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.service.Spreadsheets.Get(c.spreadsheetID).IncludeGridData(false).Context(ctx).Do()
	if err != nil {
		return "", classify(err, "failed to fetch spreadsheet metadata")
	}
	if resp.Properties == nil {
		return "", nil
	}
	return resp.Properties.Title, nil
}

func (c *Connector) Values(ctx context.Context, rng connectors.Range) ([][]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, rng.String()).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, fmt.Sprintf("failed to fetch sheet data %s", rng))
	}

	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		out = append(out, cells)
	}
	return out, nil
}

func (c *Connector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func classify(err error, message string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return internal.WrapError(internal.CodeRateLimit, err, "API rate limit exceeded")
	}
	return internal.WrapError(internal.CodeAPI, err, "%s", message)
}
