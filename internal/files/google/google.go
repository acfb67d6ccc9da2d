// Package google implements the document store ports against the Google
// Drive API.
package google

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"kontor/internal/core"
	ports "kontor/internal/files"

	goauth "golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

const fileFields = "files(id, name, mimeType, webViewLink, modifiedTime, size)"

type Client struct {
	svc *gdrive.Service
}

var (
	_ ports.Lister   = (*Client)(nil)
	_ ports.Uploader = (*Client)(nil)
	_ ports.Deleter  = (*Client)(nil)
)

// New builds a Drive client from service-account credentials JSON. The
// service account needs the folders shared with it; it sees nothing else.
func New(ctx context.Context, credentialsJSON []byte) (*Client, error) {
	jwtConfig, err := goauth.JWTConfigFromJSON(credentialsJSON, gdrive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := gdrive.NewService(ctx, goption.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	slog.InfoContext(ctx, "Drive client ready")
	return &Client{svc: svc}, nil
}

// sanitizeID strips quotes and backslashes so an ID can be embedded in a
// Drive query string.
func sanitizeID(id string) string {
	return strings.NewReplacer(`'`, "", `"`, "", `\`, "").Replace(id)
}

func (c *Client) ListFolder(ctx context.Context, folderID string) ([]core.FileRef, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", sanitizeID(folderID))
	resp, err := c.svc.Files.List().
		Q(query).
		OrderBy("modifiedTime desc").
		Fields(fileFields).
		Context(ctx).Do()
	if err != nil {
		return nil, core.Upstream("list folder "+folderID, err)
	}
	return refsFromList(resp.Files), nil
}

func (c *Client) ListRecent(ctx context.Context, limit int) ([]core.FileRef, error) {
	if limit <= 0 {
		limit = 20
	}
	resp, err := c.svc.Files.List().
		Q("trashed = false").
		OrderBy("modifiedTime desc").
		PageSize(int64(limit)).
		Fields(fileFields).
		Context(ctx).Do()
	if err != nil {
		return nil, core.Upstream("list recent files", err)
	}
	return refsFromList(resp.Files), nil
}

func (c *Client) Upload(ctx context.Context, folderID, name, mimeType string, r io.Reader) (core.FileRef, error) {
	meta := &gdrive.File{Name: name, MimeType: mimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	created, err := c.svc.Files.Create(meta).
		Media(r, googleapi.ContentType(mimeType)).
		Fields("id, name, mimeType, webViewLink, modifiedTime, size").
		Context(ctx).Do()
	if err != nil {
		return core.FileRef{}, core.Upstream("upload "+name, err)
	}
	return core.FileRef{
		ID:           created.Id,
		Name:         created.Name,
		MIMEType:     created.MimeType,
		ViewLink:     created.WebViewLink,
		ModifiedTime: created.ModifiedTime,
		Size:         created.Size,
	}, nil
}

func (c *Client) Delete(ctx context.Context, fileID string) error {
	if err := c.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return core.Upstream("delete file "+fileID, err)
	}
	return nil
}

func refsFromList(in []*gdrive.File) []core.FileRef {
	out := make([]core.FileRef, 0, len(in))
	for _, f := range in {
		out = append(out, core.FileRef{
			ID:           f.Id,
			Name:         f.Name,
			MIMEType:     f.MimeType,
			ViewLink:     f.WebViewLink,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
		})
	}
	return out
}
