package sharepoint

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/voltfolio/evisync/internal/logger"
)

// conflictReplace instructs the store to overwrite rather than error or
// auto-rename on a name collision. Folder creation and uploads both rely on
// it so concurrent callers racing to create the same segment converge
// instead of failing.
const conflictReplace = "replace"

// EnsureFolder walks a slash-separated path under the document root and
// returns the id of the deepest segment, creating missing segments one at a
// time. Any error other than not-found aborts the walk. The operation is
// idempotent: a concurrent caller creating the same segment is resolved by
// the replace conflict behavior, or by refetching when the store reports a
// genuine duplicate.
func (c *Client) EnsureFolder(ctx context.Context, path string) (string, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", fmt.Errorf("ensure folder: empty path")
	}

	parentID := ""
	for i, segment := range segments {
		prefix := strings.Join(segments[:i+1], "/")

		item, err := c.fetchItemByPath(ctx, prefix)
		if err == nil {
			parentID = item.ID
			continue
		}
		if !IsNotFound(err) {
			return "", fmt.Errorf("ensure folder %q: %w", prefix, err)
		}

		created, createErr := c.createFolder(ctx, parentID, segment)
		if createErr != nil {
			if !IsConflict(createErr) {
				return "", fmt.Errorf("create folder %q: %w", prefix, createErr)
			}
			// A sibling appeared between the fetch and the create. Treat as
			// already-exists and adopt it.
			logger.Debug().Str("path", prefix).Msg("folder creation raced, refetching")
			refetched, refetchErr := c.fetchItemByPath(ctx, prefix)
			if refetchErr != nil {
				return "", fmt.Errorf("refetch folder %q after conflict: %w", prefix, refetchErr)
			}
			created = refetched
		}
		parentID = created.ID
	}

	return parentID, nil
}

// fetchItemByPath fetches a drive item by its hierarchy path, retrying
// transient failures.
func (c *Client) fetchItemByPath(ctx context.Context, path string) (*driveItem, error) {
	var item driveItem
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, "/root:/"+escapePath(path), &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// createFolder creates one folder under the given parent, or under the
// document root when parentID is empty.
func (c *Client) createFolder(ctx context.Context, parentID, name string) (*driveItem, error) {
	path := "/root/children"
	if parentID != "" {
		path = "/items/" + parentID + "/children"
	}

	body := map[string]any{
		"name":                              name,
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": conflictReplace,
	}

	var item driveItem
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.postJSON(ctx, path, body, &item)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("name", name).Str("id", item.ID).Msg("folder created")
	return &item, nil
}

// escapePath escapes each segment of a hierarchy path for use in an item
// address, keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
