package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

// IdentityRows is the rotation field body of an identity world-to-camera rotation.
const IdentityRows = "[1.0, 0.0, 0.0], [0.0, 1.0, 0.0], [0.0, 0.0, 1.0]"

// PoseRecord renders one cameras.json record.
func PoseRecord(id int, label, position, rotation string) string {
	return fmt.Sprintf(
		`{"id": %d, "img_name": "%s", "width": 1959, "height": 1090, "position": [%s], "rotation": [%s], "fy": 1163.2, "fx": 1162.3}`,
		id, label, position, rotation)
}

// PoseDocument joins records into a cameras.json array.
func PoseDocument(records ...string) []byte {
	return []byte("[" + strings.Join(records, ", ") + "]")
}

// WriteFile writes data to name inside dir and fails the test if it cannot. It returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)
	return path
}
