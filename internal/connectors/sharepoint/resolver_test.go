package sharepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		name     string
		viewURL  string
		wantKind TokenKind
		wantVal  string
	}{
		{
			name:     "viewer url with sourcedoc",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/_layouts/15/Doc.aspx?sourcedoc=%7BA1B2C3D4-0000-1111-2222-333344445555%7D&action=view",
			wantKind: TokenSourceDoc,
			wantVal:  "A1B2C3D4-0000-1111-2222-333344445555",
		},
		{
			name:     "viewer url without sourcedoc falls back to filename",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/_layouts/15/Doc.aspx?file=wiring%20report.pdf",
			wantKind: TokenHierarchical,
			wantVal:  "wiring report.pdf",
		},
		{
			name:     "wopiframe filename beats source param",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/_layouts/15/WopiFrame.aspx?source=/sites/assess/Evidence/ELTK_03/1_2/rig.mp4",
			wantKind: TokenHierarchical,
			wantVal:  "rig.mp4",
		},
		{
			name:     "wopiframe source containing root",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/_layouts/15/WopiFrame.aspx?source=/sites/assess/Evidence/ELTK_03/1_2/rig.webm",
			wantKind: TokenHierarchical,
			wantVal:  "Evidence/ELTK_03/1_2/rig.webm",
		},
		{
			name:     "viewer url with bare guid resolves to direct id",
			viewURL:  "https://contoso.sharepoint.com/_layouts/15/Doc.aspx?id={0f8fad5b-d9cb-469f-a165-70867728950e}",
			wantKind: TokenDirectID,
			wantVal:  "0f8fad5b-d9cb-469f-a165-70867728950e",
		},
		{
			name:     "shared documents library path",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/Shared Documents/Evidence/ELTK_03/1_2/report.pdf",
			wantKind: TokenHierarchical,
			wantVal:  "Evidence/ELTK_03/1_2/report.pdf",
		},
		{
			name:     "encoded shared documents library path",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/Shared%20Documents/Evidence/ELTK_03/1_2/report.pdf",
			wantKind: TokenHierarchical,
			wantVal:  "Evidence/ELTK_03/1_2/report.pdf",
		},
		{
			name:     "root capture from drive item url",
			viewURL:  "https://graph.microsoft.com/v1.0/sites/s1/drive/root:/Evidence/ELTK_03/1_2/report.pdf:/content",
			wantKind: TokenHierarchical,
			wantVal:  "Evidence/ELTK_03/1_2/report.pdf",
		},
		{
			name:     "sites path prefers slice from hierarchy root",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/custom/Evidence/U1/1_1/a.pdf",
			wantKind: TokenHierarchical,
			wantVal:  "Evidence/U1/1_1/a.pdf",
		},
		{
			name:     "sites path without root keeps suffix",
			viewURL:  "https://contoso.sharepoint.com/sites/assess/Archive/old.pdf",
			wantKind: TokenHierarchical,
			wantVal:  "Archive/old.pdf",
		},
		{
			name:     "raw slice when url is unparseable",
			viewURL:  "::::Evidence/ELTK_03/1_2/report.pdf?web=1",
			wantKind: TokenHierarchical,
			wantVal:  "Evidence/ELTK_03/1_2/report.pdf",
		},
		{
			name:     "empty url",
			viewURL:  "",
			wantKind: TokenUnresolved,
		},
		{
			name:     "nothing recognizable",
			viewURL:  "https://example.com/about",
			wantKind: TokenUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := ResolveRelativePath(tt.viewURL)
			assert.Equal(t, tt.wantKind, tok.Kind)
			if tt.wantVal != "" {
				assert.Equal(t, tt.wantVal, tok.Value)
			}
		})
	}
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "hierarchical", TokenHierarchical.String())
	assert.Equal(t, "sourcedoc", TokenSourceDoc.String())
	assert.Equal(t, "directid", TokenDirectID.String())
	assert.Equal(t, "unresolved", TokenUnresolved.String())
}

func TestGuessFileName(t *testing.T) {
	tests := []struct {
		name    string
		viewURL string
		want    string
	}{
		{"filename in query", "https://x/Doc.aspx?file=site%20survey.docx", "site survey.docx"},
		{"last path segment", "https://x/things/item42", "item42"},
		{"bare url", "https://nothing", "nothing"},
		{"empty", "", "evidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessFileName(tt.viewURL))
		})
	}
}
