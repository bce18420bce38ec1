// internal/services/wallet_service.go
package services

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frima-market/frima-gateway/internal/wallet"
)

var (
	ErrInvalidAddress = errors.New("invalid recipient address")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// WalletController is the wallet connector as the HTTP surface drives it.
type WalletController interface {
	WalletSession
	Available() bool
	Disconnect()
	SendTransaction(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)
	Subscribe(fn func(wallet.Session)) (unsubscribe func())
}

// WalletView is the session as the UI renders it.
type WalletView struct {
	Available       bool   `json:"available"`
	Connected       bool   `json:"connected"`
	Connecting      bool   `json:"connecting"`
	Address         string `json:"address,omitempty"`
	ChainID         string `json:"chain_id,omitempty"`
	NetworkName     string `json:"network_name,omitempty"`
	NativeSymbol    string `json:"native_symbol,omitempty"`
	Balance         string `json:"balance"`
	BalanceWei      string `json:"balance_wei"`
	OnMarketNetwork bool   `json:"on_market_network"`
}

type WalletService struct {
	wallet  WalletController
	network wallet.Network
}

func NewWalletService(w WalletController, network wallet.Network) *WalletService {
	return &WalletService{wallet: w, network: network}
}

func (s *WalletService) View() WalletView {
	return s.view(s.wallet.Session())
}

func (s *WalletService) view(session wallet.Session) WalletView {
	v := WalletView{
		Available:       s.wallet.Available(),
		Connected:       session.Connected,
		Connecting:      session.Connecting,
		Address:         session.Address,
		ChainID:         session.ChainID,
		Balance:         wallet.FormatEther(session.Balance),
		BalanceWei:      "0",
		OnMarketNetwork: session.IsOn(s.network),
	}
	if session.Balance != nil {
		v.BalanceWei = session.Balance.String()
	}
	if session.ChainID != "" {
		v.NetworkName, v.NativeSymbol = wallet.NetworkInfo(session.ChainID)
	}
	return v
}

func (s *WalletService) Connect(ctx context.Context) (WalletView, error) {
	if err := s.wallet.Connect(ctx); err != nil {
		return s.View(), NormalizeError(err)
	}
	return s.View(), nil
}

func (s *WalletService) Disconnect() WalletView {
	s.wallet.Disconnect()
	return s.View()
}

func (s *WalletService) SwitchNetwork(ctx context.Context, name string) (WalletView, error) {
	key, ok := wallet.ParseNetworkKey(name)
	if !ok {
		return s.View(), wallet.ErrUnknownNetwork
	}
	if err := s.wallet.SwitchNetwork(ctx, key); err != nil {
		return s.View(), NormalizeError(err)
	}
	return s.View(), nil
}

// Send transfers amountEth (decimal ether) to the recipient.
func (s *WalletService) Send(ctx context.Context, to, amountEth string) (common.Hash, error) {
	if !common.IsHexAddress(to) {
		return common.Hash{}, ErrInvalidAddress
	}
	amount, err := wallet.ParseEther(amountEth)
	if err != nil || amount.Sign() <= 0 {
		return common.Hash{}, ErrInvalidAmount
	}
	hash, err := s.wallet.SendTransaction(context.WithoutCancel(ctx), common.HexToAddress(to), amount)
	if err != nil {
		return hash, NormalizeError(err)
	}
	return hash, nil
}

// Watch streams a view on every session change until ctx is done. The
// current view is delivered first. A slow reader skips intermediate
// sessions and always receives the latest one.
func (s *WalletService) Watch(ctx context.Context) <-chan WalletView {
	out := make(chan WalletView)
	updates := make(chan wallet.Session, 1)

	var mu sync.Mutex
	unsubscribe := s.wallet.Subscribe(func(session wallet.Session) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-updates:
		default:
		}
		updates <- session
	})

	go func() {
		defer close(out)
		defer unsubscribe()

		pending, ok := s.View(), true
		for {
			select {
			case session := <-updates:
				pending, ok = s.view(session), true
				continue
			default:
			}

			var send chan<- WalletView
			if ok {
				send = out
			}
			select {
			case session := <-updates:
				pending, ok = s.view(session), true
			case send <- pending:
				ok = false
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
