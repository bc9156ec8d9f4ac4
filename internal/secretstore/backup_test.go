package secretstore

import "testing"

func TestExportImport_RoundTrip(t *testing.T) {
	s := New(nil)
	_ = s.Put("wallet.master.seed", []byte("top-secret-seed"), false)
	_ = s.Put("wallet_alice_priv_0", []byte("derived-key"), true)

	blob, err := s.Export("correct horse battery staple")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored := New(nil)
	if err := restored.Import(blob, "correct horse battery staple"); err != nil {
		t.Fatalf("Import: %v", err)
	}

	got, err := restored.Get("wallet.master.seed")
	if err != nil {
		t.Fatalf("Get after import: %v", err)
	}
	if string(got) != "top-secret-seed" {
		t.Errorf("Get = %q, want %q", got, "top-secret-seed")
	}

	// requireUserPresence must survive the round trip.
	if _, err := restored.Get("wallet_alice_priv_0"); err != nil {
		t.Fatalf("Get presence-bound item: %v", err)
	}
}

func TestImport_WrongPasswordFailsWithoutLeakingWhichCheckFailed(t *testing.T) {
	s := New(nil)
	_ = s.Put("k", []byte("v"), false)
	blob, err := s.Export("right-password")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored := New(nil)
	err = restored.Import(blob, "wrong-password")
	if err != ErrAuthFailed {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
}

func TestImport_CorruptedBlobFailsWithErrAuthFailed(t *testing.T) {
	s := New(nil)
	_ = s.Put("k", []byte("v"), false)
	blob, err := s.Export("pw")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	blob[len(blob)-1] ^= 0xff // flip last byte of the GCM tag

	restored := New(nil)
	if err := restored.Import(blob, "pw"); err != ErrAuthFailed {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
}

func TestImport_TruncatedBlobFailsWithErrAuthFailed(t *testing.T) {
	restored := New(nil)
	if err := restored.Import([]byte("too short"), "pw"); err != ErrAuthFailed {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
}

func TestExport_IsNonDeterministicAcrossCalls(t *testing.T) {
	s := New(nil)
	_ = s.Put("k", []byte("v"), false)

	a, err := s.Export("pw")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	b, err := s.Export("pw")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("two exports with the same password produced identical blobs (salt/nonce reuse)")
	}
}
