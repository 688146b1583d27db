package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseFundID("")
		require.Error(t, err)
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseDocumentID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseEntityID(uuid.Nil.String())
		require.Error(t, err)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseFundID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, FundID(valid), id)
		assert.Equal(t, valid.String(), id.String())
	})
}

func TestID_TypeSafety(t *testing.T) {
	fundID := FundID(uuid.New())
	docID := DocumentID(uuid.New())

	// Distinct types: assigning one to the other is a compile error.
	// var _ FundID = docID // does not compile

	assert.False(t, fundID.IsNil())
	assert.False(t, docID.IsNil())
	assert.True(t, FundID{}.IsNil())
}

func TestID_TextMarshaling(t *testing.T) {
	t.Run("round-trips through JSON", func(t *testing.T) {
		fundID := FundID(uuid.New())

		raw, err := json.Marshal(fundID)
		require.NoError(t, err)
		assert.Equal(t, `"`+fundID.String()+`"`, string(raw))

		var decoded FundID
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, fundID, decoded)
	})

	t.Run("rejects malformed text", func(t *testing.T) {
		var id DocumentID
		require.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &id))
	})
}
