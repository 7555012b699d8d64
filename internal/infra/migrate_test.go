package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSQL_DropsCommentsAndBlankStatements(t *testing.T) {
	in := `-- header
CREATE TABLE a (id INT);

-- second
CREATE INDEX a_idx ON a (id);
;`
	got := splitSQL(stripSQLComments(in))
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX a_idx ON a (id)"}, got)
}

func TestMigrationsDir_FindsModuleRoot(t *testing.T) {
	dir, err := MigrationsDir()
	assert.NoError(t, err)
	assert.FileExists(t, dir+"/0001_init.sql")
}
