package sharepoint

import (
	"context"
	"fmt"
	"net/url"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
	"github.com/voltfolio/evisync/internal/logger"
)

// Ensure Client implements the driven port.
var _ driven.DocumentStore = (*Client)(nil)

// ListChildren lists the immediate children of a hierarchy path. An empty
// path lists the document root.
func (c *Client) ListChildren(ctx context.Context, path string) ([]domain.RemoteFile, error) {
	endpoint := "/root/children"
	if path != "" {
		endpoint = "/root:/" + escapePath(path) + ":/children"
	}

	var list itemList
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, endpoint, &list)
	})
	if err != nil {
		return nil, err
	}

	files := make([]domain.RemoteFile, 0, len(list.Value))
	for i := range list.Value {
		files = append(files, list.Value[i].toRemoteFile())
	}
	return files, nil
}

// SearchFiles runs a flat content search and returns file hits with their
// parent paths. Folders are filtered out.
func (c *Client) SearchFiles(ctx context.Context, query string) ([]domain.RemoteFile, error) {
	var list itemList
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, "/root/search(q='"+url.PathEscape(query)+"')", &list)
	})
	if err != nil {
		return nil, err
	}

	var files []domain.RemoteFile
	for i := range list.Value {
		if list.Value[i].Folder != nil {
			continue
		}
		files = append(files, list.Value[i].toRemoteFile())
	}
	return files, nil
}

// Delete removes an evidence file. The primary id-addressed delete is tried
// first; on failure the file is addressed by its server-relative path
// through the lower-level item address instead.
func (c *Client) Delete(ctx context.Context, ref domain.EvidenceRef) error {
	item, err := c.resolveRef(ctx, ref)
	if err != nil {
		return fmt.Errorf("delete evidence: %w", err)
	}

	primaryErr := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.delete(ctx, "/items/"+item.ID)
	})
	if primaryErr == nil {
		return nil
	}

	path := item.hierarchyPath()
	if path == "" {
		path = ref.Path
	}
	if path == "" {
		return fmt.Errorf("delete evidence %q: %w", item.Name, primaryErr)
	}

	logger.Warn().Err(primaryErr).Str("path", path).Msg("primary delete failed, trying path-addressed delete")
	fallbackErr := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.delete(ctx, "/root:/"+escapePath(path))
	})
	if fallbackErr != nil {
		return fmt.Errorf("delete evidence %q: %w", item.Name, fallbackErr)
	}
	return nil
}
