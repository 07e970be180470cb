package duplicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSimilarity_Invariants(t *testing.T) {
	assert.Equal(t, 1.0, stringSimilarity("", ""))
	assert.Equal(t, 0.0, stringSimilarity("abc", ""))
	assert.Equal(t, 0.0, stringSimilarity("", "abc"))
	assert.Equal(t, 1.0, stringSimilarity("INV-2024-001", "INV-2024-001"))
	assert.Equal(t, stringSimilarity("abc", "xyz"), stringSimilarity("xyz", "abc"))
}

func TestStringSimilarity_SpecExamples(t *testing.T) {
	assert.Greater(t, stringSimilarity("INV-2024-001", "INV-2024-001A"), 0.8)
	assert.Less(t, stringSimilarity("INV-2024-001", "PO-2023-999"), 0.5)
}
