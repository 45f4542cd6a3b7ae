package notify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkItemsSplitsAtFixedSize(t *testing.T) {
	items := IDList(make([]uuid.UUID, ChunkSize*2+3))
	chunks := chunkItems(items, ChunkSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], ChunkSize)
	assert.Len(t, chunks[1], ChunkSize)
	assert.Len(t, chunks[2], 3)
}

func TestChunkItemsEmptyInputYieldsNoChunks(t *testing.T) {
	assert.Empty(t, chunkItems(nil, ChunkSize))
}

func TestIDListPreservesOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	items := IDList([]uuid.UUID{a, b})
	require.Len(t, items, 2)
	assert.Equal(t, a, items[0])
	assert.Equal(t, b, items[1])
}
