// internal/contract/events.go
package contract

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const eventItemListed = "ItemListed"

// ListedItemID scans logs emitted by the marketplace at address for an
// ItemListed event and returns its item id. Logs that do not decode are
// skipped; no match yields 0.
func ListedItemID(parsed abi.ABI, address common.Address, logs []*types.Log) uint64 {
	event, ok := parsed.Events[eventItemListed]
	if !ok {
		return 0
	}
	bound := bind.NewBoundContract(address, parsed, nil, nil, nil)

	for _, log := range logs {
		if log == nil || log.Address != address || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		var ev ItemListedEvent
		if err := bound.UnpackLog(&ev, eventItemListed, *log); err != nil {
			continue
		}
		if ev.ItemId != nil && ev.ItemId.IsUint64() {
			return ev.ItemId.Uint64()
		}
	}
	return 0
}
