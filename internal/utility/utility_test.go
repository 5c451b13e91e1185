package utility

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_studio/internal/common"
)

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Unique([]string{"b", "a", "b", "c", "a"}))
	assert.NotNil(t, Unique[string](nil))
}

func TestHashTokenStable(t *testing.T) {
	assert.Equal(t, HashToken("cs_abc"), HashToken("cs_abc"))
	assert.NotEqual(t, HashToken("cs_abc"), HashToken("cs_abd"))
	assert.Len(t, HashToken("x"), 64)
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken("cs_", 24)
	require.NoError(t, err)
	b, err := RandomToken("cs_", 24)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a, "cs_"))
	assert.Len(t, a, 3+48)
	assert.NotEqual(t, a, b)
}

func TestParseObjectIDs(t *testing.T) {
	ids, err := StringArray2ObjectIDArray("ids", []string{"65f000000000000000000001", "65f000000000000000000002"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = StringArray2ObjectIDArray("ids", []string{"65f000000000000000000001", "bad"})
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestEmailHelpers(t *testing.T) {
	assert.Equal(t, "an@corp.vn", NormalizeEmail("  An@Corp.VN "))
	assert.NoError(t, ValidateEmail("an@corp.vn"))
	assert.ErrorIs(t, ValidateEmail("not-an-email"), common.ErrInvalidEmail)
}
