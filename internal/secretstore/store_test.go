package secretstore

import "testing"

func TestPutGet_RoundTrip(t *testing.T) {
	s := New(nil)
	if err := s.Put("wallet.master.seed", []byte("seed-bytes"), false); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("wallet.master.seed")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "seed-bytes" {
		t.Errorf("Get = %q, want %q", got, "seed-bytes")
	}
}

func TestGet_MissingKeyReturnsErrNotFound(t *testing.T) {
	s := New(nil)
	if _, err := s.Get("nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPut_EmptyKeyRejected(t *testing.T) {
	s := New(nil)
	if err := s.Put("", []byte("x"), false); err != ErrEmptyKey {
		t.Fatalf("err = %v, want ErrEmptyKey", err)
	}
}

func TestDelete_RemovesAndZeroes(t *testing.T) {
	s := New(nil)
	_ = s.Put("k", []byte("secret"), false)
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("k"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestDelete_MissingKeyReturnsErrNotFound(t *testing.T) {
	s := New(nil)
	if err := s.Delete("nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestList_FiltersByPrefix(t *testing.T) {
	s := New(nil)
	_ = s.Put("wallet.data.a", []byte("1"), false)
	_ = s.Put("wallet.data.b", []byte("2"), false)
	_ = s.Put("wallet.master.seed", []byte("3"), false)

	got := s.List("wallet.data.")
	want := []string{"wallet.data.a", "wallet.data.b"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List = %v, want %v", got, want)
		}
	}
}

type denyPresence struct{}

func (denyPresence) Confirm(string) bool { return false }

func TestGet_PresenceBoundItemDeniedByChecker(t *testing.T) {
	s := New(denyPresence{})
	_ = s.Put("wallet_alice_priv_0", []byte("priv"), true)
	if _, err := s.Get("wallet_alice_priv_0"); err != ErrPresenceDenied {
		t.Fatalf("err = %v, want ErrPresenceDenied", err)
	}
}

func TestGet_PresenceBoundItemAllowedByChecker(t *testing.T) {
	s := New(AlwaysAllow{})
	_ = s.Put("wallet_alice_priv_0", []byte("priv"), true)
	got, err := s.Get("wallet_alice_priv_0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "priv" {
		t.Errorf("Get = %q, want %q", got, "priv")
	}
}

func TestPut_ReplacingKeyDestroysPriorValue(t *testing.T) {
	s := New(nil)
	_ = s.Put("k", []byte("old"), false)
	_ = s.Put("k", []byte("new"), false)
	got, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get = %q, want %q", got, "new")
	}
}
