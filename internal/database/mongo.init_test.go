package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type indexedModel struct {
	Email     string `bson:"email" index:"unique"`
	APIKey    string `bson:"apiKeyHash,omitempty" index:"unique,sparse"`
	CompanyID string `bson:"companyId" index:"single:1;compound:company_status"`
	Status    string `bson:"status" index:"compound:company_status"`
	Title     string `bson:"title" index:"text"`
	ExpiresAt int64  `bson:"expiresAt" index:"ttl:60"`
	Ignored   string `bson:"-" index:"single:1"`
	Plain     string `bson:"plain"`
}

func TestBuildIndexSpecs(t *testing.T) {
	specs, err := BuildIndexSpecs(&indexedModel{})
	require.NoError(t, err)

	byName := map[string]IndexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}
	require.Len(t, byName, 6)

	assert.True(t, byName["email_unique"].Unique)
	assert.False(t, byName["email_unique"].Sparse)
	assert.True(t, byName["apiKeyHash_unique"].Sparse, "tên field lấy phần trước ',omitempty'")
	assert.Equal(t, bson.D{{Key: "title", Value: "text"}}, byName["title_text"].Keys)
	assert.Equal(t, int32(60), *byName["expiresAt_ttl"].TTL)
	assert.Equal(t, bson.D{{Key: "companyId", Value: 1}, {Key: "status", Value: 1}}, byName["company_status"].Keys)
	assert.Contains(t, byName, "companyId_single")
}

func TestBuildIndexSpecsRejectsNonStruct(t *testing.T) {
	_, err := BuildIndexSpecs(42)
	assert.Error(t, err)
}

func TestSameIndex(t *testing.T) {
	spec := IndexSpec{Name: "email_unique", Keys: bson.D{{Key: "email", Value: 1}}, Unique: true}
	assert.True(t, sameIndex(bson.M{"key": bson.M{"email": int32(1)}, "unique": true}, spec))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"email": int32(1)}}, spec))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"email": int32(-1)}, "unique": true}, spec))
}
