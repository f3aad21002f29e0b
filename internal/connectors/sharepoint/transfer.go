package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
	"github.com/voltfolio/evisync/internal/logger"
)

const (
	// directUploadLimit is the size below which images go through the
	// single-request upload path.
	directUploadLimit = 4 << 20

	// Chunk sizes. Video uses larger chunks as the payload grows; everything
	// else uses a flat 4 MiB.
	chunkDefault    = 4 << 20
	chunkVideoBase  = 6 << 20
	chunkVideoLarge = 8 << 20
	chunkVideoHuge  = 10 << 20

	videoLargeCutoff = 50 << 20
	videoHugeCutoff  = 100 << 20

	// maxChunkAttempts is the retry budget per chunk. The budget resets on
	// each successful chunk; exhaustion is evaluated per chunk, never
	// cumulatively across the file.
	maxChunkAttempts = 5

	// chunkTimeout is the HTTP timeout for one chunk PUT, sized for a 10 MiB
	// chunk on a slow uplink.
	chunkTimeout = 5 * time.Minute
)

// Upload transfers file bytes into the destination folder. Images under
// 4 MiB take the direct single-request path; a direct-path failure falls
// through to the chunked path rather than surfacing, since a second attempt
// via a different route is cheaper than failing the whole upload. Everything
// else, and all video, goes through a chunked upload session.
func (c *Client) Upload(ctx context.Context, req driven.UploadRequest) (*domain.RemoteFile, error) {
	size := int64(len(req.Data))

	directEligible := req.DirectOnly ||
		(strings.HasPrefix(req.MIMEType, "image/") && size < directUploadLimit)

	if directEligible {
		item, err := c.uploadDirect(ctx, req)
		if err == nil {
			reportProgress(req.OnProgress, 100)
			f := item.toRemoteFile()
			return &f, nil
		}
		if req.DirectOnly {
			return nil, err
		}
		logger.Warn().Err(err).Str("file", req.FileName).Msg("direct upload failed, falling back to chunked session")
	}

	return c.uploadChunked(ctx, req)
}

// uploadDirect PUTs the whole payload in one request, scoped to the
// destination folder and exact file name, replacing on collision.
func (c *Client) uploadDirect(ctx context.Context, req driven.UploadRequest) (*driveItem, error) {
	path := fmt.Sprintf("/items/%s:/%s:/content?@microsoft.graph.conflictBehavior=%s",
		req.FolderID, url.PathEscape(req.FileName), conflictReplace)

	var item driveItem
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.putContent(ctx, path, req.Data, req.MIMEType, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// uploadChunked creates an upload session and transmits the payload as
// sequential byte ranges. A failure partway through leaves a partial remote
// object; no cleanup call is issued.
func (c *Client) uploadChunked(ctx context.Context, req driven.UploadRequest) (*domain.RemoteFile, error) {
	session, err := c.createUploadSession(ctx, req.FolderID, req.FileName)
	if err != nil {
		return nil, fmt.Errorf("create upload session: %w", err)
	}

	total := int64(len(req.Data))
	chunkSize := chunkSizeFor(req.MIMEType, total)

	logger.Debug().
		Str("file", req.FileName).
		Int64("size", total).
		Int64("chunk_size", chunkSize).
		Msg("chunked upload starting")

	var final *driveItem
	for offset := int64(0); offset < total; {
		end := min(offset+chunkSize, total)

		item, chunkErr := c.putChunk(ctx, session.UploadURL, req.Data[offset:end], offset, total)
		if chunkErr != nil {
			return nil, &TransferError{Offset: offset, Total: total, Err: chunkErr}
		}
		if item != nil {
			final = item
		}

		offset = end
		reportProgress(req.OnProgress, int(offset*100/total))
	}

	if final == nil {
		// The store accepted every range but returned no item payload.
		// Resolve the uploaded file by its destination path.
		return c.resolveUploaded(ctx, req)
	}
	f := final.toRemoteFile()
	return &f, nil
}

// createUploadSession asks the store for a single-use upload URL scoped to
// the destination folder and name, with replace-on-collision behavior.
func (c *Client) createUploadSession(ctx context.Context, folderID, name string) (*uploadSession, error) {
	path := fmt.Sprintf("/items/%s:/%s:/createUploadSession", folderID, url.PathEscape(name))
	body := map[string]any{
		"item": map[string]any{
			"@microsoft.graph.conflictBehavior": conflictReplace,
			"name":                              name,
		},
	}

	var session uploadSession
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.postJSON(ctx, path, body, &session)
	})
	if err != nil {
		return nil, err
	}
	if session.UploadURL == "" {
		return nil, fmt.Errorf("upload session response carried no upload URL")
	}
	return &session, nil
}

// putChunk PUTs one byte range to the session URL, retrying 429, 5xx and
// network-level failures up to maxChunkAttempts before giving up. Any other
// non-2xx status fails permanently. Returns the drive item when the store
// reported one (the final chunk), nil otherwise.
//
// The session URL is pre-authenticated, so the request carries no bearer
// token. A 429 never advances the offset: the same range is retransmitted.
func (c *Client) putChunk(ctx context.Context, uploadURL string, chunk []byte, offset, total int64) (*driveItem, error) {
	var item *driveItem
	err := Retry(ctx, maxChunkAttempts, chunkRetryable, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(chunk))
		if err != nil {
			return fmt.Errorf("build chunk request: %w", err)
		}
		end := offset + int64(len(chunk)) - 1
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, end, total))
		req.ContentLength = int64(len(chunk))

		resp, err := c.chunkHTTP.Do(req)
		if err != nil {
			return fmt.Errorf("put chunk at %d: %w", offset, err)
		}
		defer resp.Body.Close()

		c.limiter.UpdateFromResponse(resp)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return decodeAPIError(resp, uploadURL)
		}

		// 200/201 on the final range carries the created item; 202 on
		// intermediate ranges carries only the next expected ranges.
		if resp.StatusCode != http.StatusAccepted {
			var decoded driveItem
			if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr == nil && decoded.ID != "" {
				item = &decoded
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// chunkRetryable retries 429 and 5xx statuses plus transport-level errors.
func chunkRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// No typed status: a network-level failure, worth retrying.
	return true
}

// resolveUploaded fetches the freshly uploaded file by destination path.
func (c *Client) resolveUploaded(ctx context.Context, req driven.UploadRequest) (*domain.RemoteFile, error) {
	var item driveItem
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, "/items/"+req.FolderID+":/"+url.PathEscape(req.FileName), &item)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve uploaded file: %w", err)
	}
	f := item.toRemoteFile()
	return &f, nil
}

// chunkSizeFor picks the chunk size for a payload. Video content uses a
// 6 MiB base, rising to 8 MiB above 50 MiB total and 10 MiB above 100 MiB;
// everything else uses a flat 4 MiB.
func chunkSizeFor(mimeType string, total int64) int64 {
	if strings.HasPrefix(mimeType, "video/") {
		switch {
		case total > videoHugeCutoff:
			return chunkVideoHuge
		case total > videoLargeCutoff:
			return chunkVideoLarge
		default:
			return chunkVideoBase
		}
	}
	return chunkDefault
}

func reportProgress(fn driven.ProgressFunc, percent int) {
	if fn != nil {
		fn(percent)
	}
}
