package txadapter

import (
	"context"
	"testing"

	"github.com/nimbuswallet/core/internal/electrum"
)

func seedSorted(a *Adapter, heightMap map[string]*int64, order []string) {
	a.mu.Lock()
	a.heightMap = heightMap
	a.sortedTxids = order
	a.invalidated = false
	a.mu.Unlock()
}

func TestCursorFor_RoundTripsThroughDecodeCursor(t *testing.T) {
	h := int64(200)
	cursor := CursorFor(TransactionModel{Txid: "abc", BlockHeight: &h})
	height, txid, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("decodeCursor: %v", err)
	}
	if height != 200 || txid != "abc" {
		t.Fatalf("decodeCursor() = %d, %q; want 200, abc", height, txid)
	}
}

func TestCursorFor_MempoolEncodesZeroHeight(t *testing.T) {
	cursor := CursorFor(TransactionModel{Txid: "xyz", BlockHeight: nil})
	height, txid, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("decodeCursor: %v", err)
	}
	if height != 0 || txid != "xyz" {
		t.Fatalf("decodeCursor() = %d, %q; want 0, xyz", height, txid)
	}
}

func TestDecodeCursor_RejectsMalformedInput(t *testing.T) {
	if _, _, err := decodeCursor(Cursor("no-pipe-here")); err == nil {
		t.Fatal("expected an error for a cursor with no separator")
	}
	if _, _, err := decodeCursor(Cursor("notanumber|txid")); err == nil {
		t.Fatal("expected an error for a non-numeric height")
	}
}

func TestPageIDs_EmptyCursorStartsFromNewest(t *testing.T) {
	client := newFakeElectrum()
	repo := newFakeWalletSource()
	a := newTestAdapter(t, client, repo)
	defer a.Close()

	h1 := int64(100)
	seedSorted(a, map[string]*int64{"new": nil, "old": &h1}, []string{"new", "old"})

	ids, err := a.pageIDs("", 1)
	if err != nil {
		t.Fatalf("pageIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "new" {
		t.Fatalf("pageIDs() = %v; want [new]", ids)
	}
}

func TestPageIDs_ExactCursorMatchStartsAfterIt(t *testing.T) {
	client := newFakeElectrum()
	repo := newFakeWalletSource()
	a := newTestAdapter(t, client, repo)
	defer a.Close()

	h1 := int64(100)
	h2 := int64(90)
	seedSorted(a, map[string]*int64{"a": &h1, "b": &h2}, []string{"a", "b"})

	cursor := encodeCursor(100, "a")
	ids, err := a.pageIDs(cursor, 10)
	if err != nil {
		t.Fatalf("pageIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("pageIDs() = %v; want [b]", ids)
	}
}

func TestPageIDs_ReorgedCursorFallsBackToNearestSuccessor(t *testing.T) {
	client := newFakeElectrum()
	repo := newFakeWalletSource()
	a := newTestAdapter(t, client, repo)
	defer a.Close()

	h1 := int64(100)
	h2 := int64(90)
	seedSorted(a, map[string]*int64{"a": &h1, "b": &h2}, []string{"a", "b"})

	// Cursor references a txid that no longer exists in the index (as if it
	// were reorged out), at a height between a and b.
	cursor := encodeCursor(95, "vanished")
	ids, err := a.pageIDs(cursor, 10)
	if err != nil {
		t.Fatalf("pageIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("pageIDs() = %v; want [b]", ids)
	}
}

func TestPageIDs_PastTheEndReturnsEmpty(t *testing.T) {
	client := newFakeElectrum()
	repo := newFakeWalletSource()
	a := newTestAdapter(t, client, repo)
	defer a.Close()

	h1 := int64(100)
	seedSorted(a, map[string]*int64{"a": &h1}, []string{"a"})

	ids, err := a.pageIDs(encodeCursor(100, "a"), 10)
	if err != nil {
		t.Fatalf("pageIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("pageIDs() = %v; want empty", ids)
	}
}

func TestRefineOrderWithPositions_GroupsByHeightAndFetchesMissingPositions(t *testing.T) {
	client := newFakeElectrum()
	repo := newFakeWalletSource()
	a := newTestAdapter(t, client, repo)
	defer a.Close()

	h := int64(100)
	seedSorted(a, map[string]*int64{
		"mempool-1": nil,
		"tx-a":      &h,
		"tx-b":      &h,
	}, nil)

	client.merkleByTxid["tx-a"] = electrum.Merkle{Pos: 1}
	client.merkleByTxid["tx-b"] = electrum.Merkle{Pos: 0}

	ids := []string{"mempool-1", "tx-a", "tx-b"}
	if err := a.refineOrderWithPositions(context.Background(), ids); err != nil {
		t.Fatalf("refineOrderWithPositions: %v", err)
	}

	want := []string{"mempool-1", "tx-b", "tx-a"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("refined order = %v; want %v", ids, want)
		}
	}
}
