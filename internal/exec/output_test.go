package exec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/pomgraph/errors"
)

type stubResult struct {
	Names []string `json:"names" yaml:"names"`
}

func (s *stubResult) headers() []string { return []string{"NAME"} }

func (s *stubResult) rows() [][]string {
	out := make([][]string, len(s.Names))
	for i, n := range s.Names {
		out[i] = []string{n}
	}
	return out
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"", FormatTable, FormatJSON, FormatYAML} {
		assert.NoError(t, ValidateFormat(f), f)
	}
	err := ValidateFormat("xml")
	assert.ErrorIs(t, err, errUtils.ErrInvalidFormat)
	assert.Equal(t, errUtils.ExitCodeUsage, errUtils.GetExitCode(err))
}

func TestPrintOrWriteToFile(t *testing.T) {
	data := &stubResult{Names: []string{"alpha", "beta"}}

	tests := []struct {
		format string
		want   string
	}{
		{format: FormatJSON, want: `{"names": ["alpha", "beta"]}`},
		{format: FormatYAML, want: "names:\n  - alpha\n  - beta\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, printOrWriteToFile(&out, tt.format, "", data))
			assertSame(t, tt.format, tt.want, out.String())

			file := filepath.Join(t.TempDir(), "out."+tt.format)
			require.NoError(t, printOrWriteToFile(&out, tt.format, file, data))
			written, err := os.ReadFile(file)
			require.NoError(t, err)
			assertSame(t, tt.format, tt.want, string(written))
		})
	}
}

func assertSame(t *testing.T, format, want, got string) {
	t.Helper()
	if format == FormatJSON {
		assert.JSONEq(t, want, got)
		assert.True(t, strings.HasSuffix(got, "\n"))
		return
	}
	assert.Equal(t, want, got)
}

func TestPrintOrWriteToFile_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printOrWriteToFile(&out, "", "", &stubResult{Names: []string{"alpha"}}))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "NAME", strings.TrimSpace(lines[0]))
	assert.Equal(t, "alpha", strings.TrimSpace(lines[1]))

	out.Reset()
	require.NoError(t, printOrWriteToFile(&out, FormatTable, "", &stubResult{}))
	assert.Equal(t, "(none)\n", out.String())
}

func TestPrintOrWriteToFile_WriteError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing", "out.json")
	err := printOrWriteToFile(&bytes.Buffer{}, FormatJSON, file, &stubResult{})
	assert.ErrorIs(t, err, errUtils.ErrWriteFile)
}
