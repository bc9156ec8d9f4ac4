package usecases

import (
	"context"

	walleterr "github.com/nimbuswallet/core/pkg/errors"

	"github.com/nimbuswallet/core/internal/txadapter"
)

// ListTransactions returns one page of the active wallet's transaction
// history, newest first. Pass an empty cursor to start from the top; pass
// TransactionPage.NextCursor back in to continue.
func (s *Service) ListTransactions(ctx context.Context, cursor txadapter.Cursor, limit int) (*TransactionPage, error) {
	wallet, err := s.repo.GetActive()
	if err != nil {
		return nil, mapWalletRepoErr(err, "list transactions")
	}

	items, err := s.adapterFor(wallet.ID).Page(ctx, cursor, limit)
	if err != nil {
		return nil, walleterr.Wrap(err, "list transactions")
	}

	page := &TransactionPage{Items: items}
	if len(items) == limit && limit > 0 {
		page.NextCursor = txadapter.CursorFor(items[len(items)-1])
	}
	return page, nil
}

// RefreshIndex forces the active wallet's transaction index to rebuild on
// its next page request, e.g. after SendBitcoin broadcasts a new spend.
func (s *Service) RefreshIndex(walletID string) {
	s.adapterFor(walletID).Invalidate()
}
