package sharepoint

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/voltfolio/evisync/internal/core/domain"
)

// HierarchyRoot is the folder name all resolved hierarchical paths start at.
const HierarchyRoot = domain.EvidenceRoot

// TokenKind classifies how a view URL was resolved.
type TokenKind int

const (
	// TokenUnresolved means no stage matched; the caller must degrade to a
	// synthetic record built from a best-guess file name.
	TokenUnresolved TokenKind = iota

	// TokenHierarchical carries a slash-separated path under the document
	// root. The path may be a bare file name when only a name could be
	// extracted.
	TokenHierarchical

	// TokenSourceDoc carries the sourcedoc reference of a viewer URL, braces
	// stripped. Resolving it requires a content search.
	TokenSourceDoc

	// TokenDirectID carries an explicit remote object id.
	TokenDirectID
)

func (k TokenKind) String() string {
	switch k {
	case TokenHierarchical:
		return "hierarchical"
	case TokenSourceDoc:
		return "sourcedoc"
	case TokenDirectID:
		return "directid"
	default:
		return "unresolved"
	}
}

// PathToken is the outcome of resolving a view URL.
type PathToken struct {
	Kind  TokenKind
	Value string
}

var (
	// fileNameRe matches a filename with one of the extensions evidence
	// files are stored with.
	fileNameRe = regexp.MustCompile(`(?i)[\w\- %]+\.(docx?|xlsx?|pptx?|pdf|png|jpe?g|gif|bmp|mp4|mov|avi|txt)`)

	// guidRe matches an id-shaped token, with or without braces.
	guidRe = regexp.MustCompile(`(?i)\{?[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\}?`)

	// rootCaptureRe matches the "root:<path>:" shape of drive item URLs.
	rootCaptureRe = regexp.MustCompile(`root:([^:?#]+):?`)

	// sitesRe matches a "/sites/<name>/<path>" server-relative path.
	sitesRe = regexp.MustCompile(`/sites/[^/]+/(.+)`)
)

// libraryPrefixes are the standard document-library path prefixes. Paths
// after the prefix are relative to the drive root.
var libraryPrefixes = []string{
	"/Shared Documents/",
	"/Shared%20Documents/",
	"/Documents/",
}

// ResolveRelativePath turns a heterogeneous view URL into a PathToken. The
// stages run in priority order and the first match wins; viewer URLs are the
// most common and least reliable shape, so they get the most fallback
// branches. This function never fails; the worst case is TokenUnresolved.
func ResolveRelativePath(viewURL string) PathToken {
	if viewURL == "" {
		return PathToken{Kind: TokenUnresolved}
	}

	u, err := url.Parse(viewURL)
	if err != nil {
		// Even an unparseable URL may still carry the hierarchy root.
		if tok, ok := resolveRawSlice(viewURL); ok {
			return tok
		}
		return PathToken{Kind: TokenUnresolved}
	}

	stages := []func(*url.URL, string) (PathToken, bool){
		resolveViewerURL,
		resolveLibraryPrefix,
		resolveRootCapture,
		resolveSitesPath,
	}
	for _, stage := range stages {
		if tok, ok := stage(u, viewURL); ok {
			return tok
		}
	}
	if tok, ok := resolveRawSlice(viewURL); ok {
		return tok
	}
	return PathToken{Kind: TokenUnresolved}
}

// resolveViewerURL handles "open document" viewer routes (Doc.aspx,
// WopiFrame.aspx). These URLs rarely carry a usable path, so four fallbacks
// are tried: the sourcedoc parameter, a filename-shaped match, the source
// parameter, and finally any id-shaped token.
func resolveViewerURL(u *url.URL, raw string) (PathToken, bool) {
	lowerPath := strings.ToLower(u.Path)
	if !strings.Contains(lowerPath, "doc.aspx") && !strings.Contains(lowerPath, "wopiframe") {
		return PathToken{}, false
	}

	q := u.Query()

	if sourcedoc := strings.Trim(q.Get("sourcedoc"), "{}"); sourcedoc != "" {
		return PathToken{Kind: TokenSourceDoc, Value: sourcedoc}, true
	}

	decodedQuery, err := url.QueryUnescape(u.RawQuery)
	if err != nil {
		decodedQuery = u.RawQuery
	}
	if name := fileNameRe.FindString(decodedQuery); name != "" {
		return PathToken{Kind: TokenHierarchical, Value: name}, true
	}

	if source := q.Get("source"); strings.Contains(source, HierarchyRoot) {
		if path := sliceFromRoot(source); path != "" {
			return PathToken{Kind: TokenHierarchical, Value: path}, true
		}
	}

	if id := guidRe.FindString(raw); id != "" {
		return PathToken{Kind: TokenDirectID, Value: strings.Trim(id, "{}")}, true
	}

	return PathToken{}, false
}

// resolveLibraryPrefix handles standard document-library paths.
func resolveLibraryPrefix(u *url.URL, _ string) (PathToken, bool) {
	path := decodePath(u.Path)
	for _, prefix := range libraryPrefixes {
		decoded := decodePath(prefix)
		idx := strings.Index(path, decoded)
		if idx < 0 {
			continue
		}
		suffix := strings.Trim(path[idx+len(decoded):], "/")
		if suffix != "" {
			return PathToken{Kind: TokenHierarchical, Value: suffix}, true
		}
	}
	return PathToken{}, false
}

// resolveRootCapture handles the "root:<path>:" shape of drive item URLs.
func resolveRootCapture(_ *url.URL, raw string) (PathToken, bool) {
	m := rootCaptureRe.FindStringSubmatch(raw)
	if m == nil {
		return PathToken{}, false
	}
	path := strings.Trim(decodePath(m[1]), "/")
	if path == "" {
		return PathToken{}, false
	}
	return PathToken{Kind: TokenHierarchical, Value: path}, true
}

// resolveSitesPath handles "/sites/<name>/<path>" server-relative URLs,
// preferring the suffix starting at the hierarchy root when present.
func resolveSitesPath(u *url.URL, _ string) (PathToken, bool) {
	m := sitesRe.FindStringSubmatch(decodePath(u.Path))
	if m == nil {
		return PathToken{}, false
	}
	suffix := strings.Trim(m[1], "/")
	if fromRoot := sliceFromRoot(suffix); fromRoot != "" {
		return PathToken{Kind: TokenHierarchical, Value: fromRoot}, true
	}
	if suffix == "" {
		return PathToken{}, false
	}
	return PathToken{Kind: TokenHierarchical, Value: suffix}, true
}

// resolveRawSlice is the last resort: if the raw URL mentions the hierarchy
// root anywhere, slice from there to the first "?" or "#".
func resolveRawSlice(raw string) (PathToken, bool) {
	idx := strings.Index(raw, HierarchyRoot)
	if idx < 0 {
		return PathToken{}, false
	}
	slice := raw[idx:]
	if cut := strings.IndexAny(slice, "?#"); cut >= 0 {
		slice = slice[:cut]
	}
	slice = strings.Trim(decodePath(slice), "/")
	if slice == "" {
		return PathToken{}, false
	}
	return PathToken{Kind: TokenHierarchical, Value: slice}, true
}

// sliceFromRoot returns the portion of s starting at the hierarchy root,
// trimmed at the first "?" or "#", or "" if the root is absent.
func sliceFromRoot(s string) string {
	idx := strings.Index(s, HierarchyRoot)
	if idx < 0 {
		return ""
	}
	slice := s[idx:]
	if cut := strings.IndexAny(slice, "?#"); cut >= 0 {
		slice = slice[:cut]
	}
	return strings.Trim(decodePath(slice), "/")
}

// decodePath percent-decodes s, returning it unchanged when undecodable.
func decodePath(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// GuessFileName extracts a best-effort file name from a view URL, for
// synthesized records. Falls back to the last path segment, then to
// "evidence".
func GuessFileName(viewURL string) string {
	decoded := decodePath(viewURL)
	if name := fileNameRe.FindString(decoded); name != "" {
		return strings.TrimSpace(name)
	}
	trimmed := strings.Trim(decoded, "/")
	if cut := strings.IndexAny(trimmed, "?#"); cut >= 0 {
		trimmed = trimmed[:cut]
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	return "evidence"
}
