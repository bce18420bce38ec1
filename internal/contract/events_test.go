// internal/contract/events_test.go
package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemListedLog(t *testing.T, address common.Address, itemID int64) *types.Log {
	t.Helper()
	parsed := parsedABI(t)
	event := parsed.Events["ItemListed"]

	data, err := event.Inputs.NonIndexed().Pack(
		"Camera", FiatToNative(1000), "used", "https://img.example/1.png", "seller-uid", big.NewInt(1700000000), "electronics",
	)
	require.NoError(t, err)

	return &types.Log{
		Address: address,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(itemID)),
			common.BigToHash(big.NewInt(11)),
			common.BytesToHash(common.HexToAddress("0x00000000000000000000000000000000000000aa").Bytes()),
		},
		Data: data,
	}
}

func TestListedItemID(t *testing.T) {
	address := common.HexToAddress(testContract)
	other := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	logs := []*types.Log{
		{Address: address, Topics: []common.Hash{common.HexToHash("0xdead")}},
		itemListedLog(t, other, 5),
		itemListedLog(t, address, 42),
	}
	assert.Equal(t, uint64(42), ListedItemID(parsedABI(t), address, logs))
}

func TestListedItemIDMissingEvent(t *testing.T) {
	address := common.HexToAddress(testContract)
	assert.Equal(t, uint64(0), ListedItemID(parsedABI(t), address, nil))

	broken := itemListedLog(t, address, 9)
	broken.Data = []byte{0x01}
	assert.Equal(t, uint64(0), ListedItemID(parsedABI(t), address, []*types.Log{broken}))
}

func TestStatusMapping(t *testing.T) {
	s, ok := StatusCompleted.ItemStatus()
	require.True(t, ok)
	assert.EqualValues(t, "completed", s)

	_, ok = Status(9).ItemStatus()
	assert.False(t, ok)
	assert.Equal(t, "cancelled", StatusCancelled.String())
}
