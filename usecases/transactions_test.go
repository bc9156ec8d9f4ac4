package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuswallet/core/internal/walletrepo"
	walleterr "github.com/nimbuswallet/core/pkg/errors"
)

func TestListTransactions_NoActiveWalletMapsToNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeWalletRepo()
	svc := newTestService(t, repo, &fakeElectrumGateway{})

	_, err := svc.ListTransactions(context.Background(), "", 10)
	require.Error(t, err)
	assert.Equal(t, walleterr.NotFound, walleterr.KindOf(err))
}

func TestListTransactions_EmptyWalletReturnsEmptyPage(t *testing.T) {
	t.Parallel()

	repo := newFakeWalletRepo()
	w, err := repo.CreateWallet("primary", walletrepo.Mainnet)
	require.NoError(t, err)
	repo.addrs[w.ID] = []walletrepo.Address{{Address: testRecipient}}

	svc := newTestService(t, repo, &fakeElectrumGateway{})

	page, err := svc.ListTransactions(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)
}

func TestRefreshIndex_DoesNotPanicOnUnknownWallet(t *testing.T) {
	t.Parallel()

	repo := newFakeWalletRepo()
	svc := newTestService(t, repo, &fakeElectrumGateway{})

	assert.NotPanics(t, func() {
		svc.RefreshIndex("never-touched")
	})
}
