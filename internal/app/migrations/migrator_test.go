package migrations

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingOrdersSQLFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"010_marks.sql": {Data: []byte("SELECT 1;")},
		"002_index.sql": {Data: []byte("SELECT 1;")},
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("docs")},
		"archive/a.sql": {Data: []byte("SELECT 1;")},
	}

	files, err := Pending(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_index.sql", "010_marks.sql"}, files)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_init.sql"))
	assert.Equal(t, "002", Version("sql/002_add_index.sql"))
}

func TestEmbeddedSchemaNamesConstraints(t *testing.T) {
	content, err := fs.ReadFile(Embedded(), "001_init.sql")
	require.NoError(t, err)
	schema := string(content)

	// Repositories classify errors by these names.
	for _, name := range []string{
		"students_admission_number_key",
		"students_roll_number_scope_key",
		"students_class_id_fkey",
		"students_section_id_fkey",
		"classes_name_key",
		"sections_class_id_name_key",
		"promotion_records_student_id_fkey",
		"fee_payments_student_id_fkey",
	} {
		assert.True(t, strings.Contains(schema, name), name)
	}
}
