package clerk

import (
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestInsertEntry(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lineno  int
		want    string
	}{
		{
			name:    "before mark",
			content: "a\nmark\nb\n",
			lineno:  2,
			want:    "a\nentry\n\nmark\nb\n",
		},
		{
			name:    "first line",
			content: "mark\n",
			lineno:  1,
			want:    "entry\n\nmark\n",
		},
		{
			name:    "append",
			content: "a\nb\n",
			lineno:  3,
			want:    "a\nb\nentry\n\n",
		},
		{
			name:    "append without trailing newline",
			content: "a",
			lineno:  2,
			want:    "a\nentry\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLedger(t, tt.content)
			assert.NoError(t, InsertEntry(path, tt.lineno, "entry\n"))
			assert.Equal(t, tt.want, readLedger(t, path))
		})
	}
}

func TestInsertEntryAddsSingleNewline(t *testing.T) {
	path := writeLedger(t, "a\nmark\n")
	assert.NoError(t, InsertEntry(path, 2, "entry"))
	assert.Equal(t, "a\nentry\nmark\n", readLedger(t, path))
}

func TestInsertEntryOutOfRange(t *testing.T) {
	path := writeLedger(t, "a\nb\n")

	for _, lineno := range []int{0, 4} {
		assert.Error(t, InsertEntry(path, lineno, "entry\n"))
	}
	assert.Equal(t, "a\nb\n", readLedger(t, path))
}

func TestInsertEntryKeepsMode(t *testing.T) {
	path := writeLedger(t, "mark\n")
	assert.NoError(t, os.Chmod(path, 0o600))

	assert.NoError(t, InsertEntry(path, 1, "entry\n"))

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInsertEntryShiftsMark(t *testing.T) {
	path := writeLedger(t, markedLedger)

	for i := 0; i < 2; i++ {
		lineno, err := FindMarkLine(path, "Assets:Bank:Fio")
		assert.NoError(t, err)
		assert.Equal(t, 6+3*i, lineno)
		assert.NoError(t, InsertEntry(path, lineno, "2023-01-02 * \"\"\n  Assets:Bank:Fio  1 CZK\n"))
	}
}
