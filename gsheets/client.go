// ABOUTME: Google Sheets and Drive backend for the CRM document
// ABOUTME: Authenticates with a service-account key and implements workbook.Drive
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/harperreed/leadsheet/workbook"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Client talks to the Sheets and Drive APIs.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// New builds a client from a service-account key file. A non-empty
// subject enables domain-wide delegation as that user.
func New(ctx context.Context, credentialsFile, subject string) (*Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("credentials file is required")
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	cfg.Subject = subject
	return NewFromHTTPClient(ctx, cfg.Client(ctx))
}

// NewFromHTTPClient builds a client on an already authenticated HTTP client.
func NewFromHTTPClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Client{sheets: sheetsService, drive: driveService}, nil
}

// searchQuery builds the Drive query for a spreadsheet title in a folder.
func searchQuery(name, folderID string) string {
	escape := func(s string) string {
		s = strings.ReplaceAll(s, `\`, `\\`)
		return strings.ReplaceAll(s, "'", `\'`)
	}
	return fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escape(name), escape(folderID), spreadsheetMimeType)
}

func (c *Client) Search(ctx context.Context, name, folderID string) ([]string, error) {
	list, err := c.drive.Files.List().
		Q(searchQuery(name, folderID)).
		Fields("files(id)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("search", err)
	}
	ids := make([]string, 0, len(list.Files))
	for _, f := range list.Files {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

func (c *Client) Create(ctx context.Context, title string, tabs ...string) (string, error) {
	doc := &sheets.Spreadsheet{Properties: &sheets.SpreadsheetProperties{Title: title}}
	for _, t := range tabs {
		doc.Sheets = append(doc.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: t}})
	}
	created, err := c.sheets.Spreadsheets.Create(doc).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return "", wrap("create", err)
	}
	return created.SpreadsheetId, nil
}

// Move makes folderID the only parent of the document.
func (c *Client) Move(ctx context.Context, documentID, folderID string) error {
	file, err := c.drive.Files.Get(documentID).Fields("parents").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return wrap("move", err)
	}
	_, err = c.drive.Files.Update(documentID, &drive.File{}).
		AddParents(folderID).
		RemoveParents(strings.Join(file.Parents, ",")).
		Fields("id, parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return wrap("move", err)
}

func (c *Client) Open(documentID string) workbook.Workbook {
	return &Workbook{sheets: c.sheets, id: documentID}
}

// wrap converts an API error into the backend error taxonomy. Duplicate
// tab names come back as 400 "already exists" and are reported as conflicts.
func wrap(call string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "already exists") {
		return workbook.Conflict(call, err)
	}
	return workbook.Remote(call, err)
}
