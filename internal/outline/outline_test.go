package outline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault_ReportStructure(t *testing.T) {
	tmpl := Default()

	assert.Equal(t, "DSA_Mastery_Project_Report.docx", tmpl.Output)
	assert.Equal(t, "Calibri", tmpl.Font.Name)
	assert.Equal(t, 11.0, tmpl.Font.Size)
	assert.Equal(t, "Courier New", tmpl.Code.Font)
	assert.Equal(t, 8.0, tmpl.Code.Size)
	assert.Equal(t, 6.0, tmpl.ImageWidth)

	var headings []string
	var snippets []*Snippet
	var shots []*Screenshot
	for _, b := range tmpl.Blocks {
		switch {
		case b.Heading != "" && b.Level <= 1:
			headings = append(headings, b.Heading)
		case b.Snippet != nil:
			snippets = append(snippets, b.Snippet)
		case b.Screenshot != nil:
			shots = append(shots, b.Screenshot)
		}
	}

	assert.Equal(t, []string{
		"DSA Mastery Project Report",
		"1. Aim",
		"2. Description",
		"3. What is the Design?",
		"4. Implementation Code",
		"5. Results",
	}, headings)

	require.Len(t, snippets, 2)
	assert.Equal(t, "components/SortingVisualizer.jsx", snippets[0].Path)
	assert.Equal(t, 150, snippets[0].MaxLines)
	assert.Equal(t, "// ... (Methods for other algorithms like Quick/Merge Sort) ...", snippets[0].Elision)
	assert.Equal(t, "app/page.js", snippets[1].Path)
	assert.Zero(t, snippets[1].MaxLines)

	require.Len(t, shots, 3)
	assert.Equal(t, filepath.Join("public", "report_screenshots", "home.png"), tmpl.ScreenshotPath(shots[0]))
	assert.Equal(t, "Sorting Visualizer Action", shots[1].Caption)
	assert.Equal(t, "profile.png", shots[2].File)
}

func TestParse_RejectsAmbiguousBlock(t *testing.T) {
	_, err := Parse([]byte("output: r.docx\nblocks:\n  - heading: A\n    text: B\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")
}

func TestParse_RejectsNonDocxOutput(t *testing.T) {
	_, err := Parse([]byte("output: r.pdf\nblocks:\n  - text: hi\n"))
	require.Error(t, err)
}

func TestParse_AppliesDefaults(t *testing.T) {
	tmpl, err := Parse([]byte("blocks:\n  - text: hi\n"))
	require.NoError(t, err)
	assert.Equal(t, "report.docx", tmpl.Output)
	assert.Equal(t, 6.0, tmpl.ImageWidth)
	assert.Equal(t, "Courier New", tmpl.Code.Font)
}

func TestLoad_RoundTripsThroughYAML(t *testing.T) {
	orig := Default()
	data, err := yaml.Marshal(orig)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSnippet_DisplayName(t *testing.T) {
	assert.Equal(t, "page.js", (&Snippet{Path: "app/page.js"}).DisplayName())
	assert.Equal(t, "app/page.js", (&Snippet{Name: "app/page.js", Path: "app/page.js"}).DisplayName())
}
